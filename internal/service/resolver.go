package service

import (
	"context"
	"strconv"
	"strings"

	"payrolled/internal/core/domain"
	"payrolled/internal/core/ports"

	"github.com/rs/zerolog"
)

// ResolverService implements ports.PreferenceResolver over the naming
// registry. Resolution is a pure read and never fails: every lookup error
// degrades to the default route for that field only.
type ResolverService struct {
	registry     ports.NameRegistry
	homeChainID  int64
	defaultToken string
	chainKey     string
	tokenKey     string
	log          zerolog.Logger
}

// NewResolverService creates a new ResolverService.
func NewResolverService(
	registry ports.NameRegistry,
	homeChainID int64,
	defaultToken string,
	chainKey string,
	tokenKey string,
	log zerolog.Logger,
) *ResolverService {
	return &ResolverService{
		registry:     registry,
		homeChainID:  homeChainID,
		defaultToken: defaultToken,
		chainKey:     chainKey,
		tokenKey:     tokenKey,
		log:          log,
	}
}

// Resolve returns the delivery preference for a wallet address. Addresses
// without a reverse record, malformed addresses and registry failures all
// resolve to the home-chain default.
func (s *ResolverService) Resolve(ctx context.Context, address string) domain.DeliveryPreference {
	pref := domain.DeliveryPreference{
		ChainID:     s.homeChainID,
		TokenSymbol: s.defaultToken,
	}

	name, err := s.registry.ReverseResolve(ctx, address)
	if err != nil {
		s.log.Debug().Err(err).Str("address", address).Msg("reverse resolution failed, using defaults")
		return pref
	}
	if name == "" {
		return pref
	}
	pref.ResolvedName = name

	// Chain and token records degrade independently: a chain lookup failure
	// must not prevent the token lookup.
	if record, err := s.registry.TextRecord(ctx, name, s.chainKey); err != nil {
		s.log.Debug().Err(err).Str("name", name).Msg("chain record lookup failed, using home chain")
	} else if record != "" {
		if chainID, perr := strconv.ParseInt(strings.TrimSpace(record), 10, 64); perr == nil {
			pref.ChainID = chainID
		} else {
			s.log.Debug().Str("name", name).Str("record", record).Msg("chain record is not an integer, using home chain")
		}
	}

	if record, err := s.registry.TextRecord(ctx, name, s.tokenKey); err != nil {
		s.log.Debug().Err(err).Str("name", name).Msg("token record lookup failed, using default token")
	} else if record != "" {
		pref.TokenSymbol = record
	}

	return pref
}
