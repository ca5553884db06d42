package service

import (
	"context"
	"sync"

	"payrolled/internal/core/domain"
	"payrolled/internal/core/ports"

	"github.com/rs/zerolog"
)

// ClassifierService implements ports.RecipientClassifier. Preferences for
// different employees resolve concurrently, but classification waits for all
// of them and partitions in roster order. The local group's order is replayed
// verbatim in the batch transaction.
type ClassifierService struct {
	resolver    ports.PreferenceResolver
	homeChainID int64
	log         zerolog.Logger
}

// NewClassifierService creates a new ClassifierService.
func NewClassifierService(resolver ports.PreferenceResolver, homeChainID int64, log zerolog.Logger) *ClassifierService {
	return &ClassifierService{
		resolver:    resolver,
		homeChainID: homeChainID,
		log:         log,
	}
}

// Classify partitions employees into local and remote groups.
func (s *ClassifierService) Classify(ctx context.Context, employees []domain.Employee) domain.Classification {
	classification := domain.Classification{
		Local:  []domain.Recipient{},
		Remote: []domain.RemoteRecipient{},
	}
	if len(employees) == 0 {
		return classification
	}

	prefs := make([]domain.DeliveryPreference, len(employees))
	var wg sync.WaitGroup
	for i := range employees {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			prefs[i] = s.resolver.Resolve(ctx, employees[i].WalletAddress)
		}(i)
	}
	wg.Wait()

	for i, emp := range employees {
		recipient := domain.Recipient{Employee: emp, Preference: prefs[i]}
		if prefs[i].ChainID == s.homeChainID {
			classification.Local = append(classification.Local, recipient)
		} else {
			classification.Remote = append(classification.Remote, domain.RemoteRecipient{
				Recipient: recipient,
				ChainID:   prefs[i].ChainID,
			})
		}
	}

	s.log.Info().
		Int("local", len(classification.Local)).
		Int("remote", len(classification.Remote)).
		Msg("roster classified")

	return classification
}
