package domain

// DeliveryPreference is the resolved routing decision for one employee,
// sourced from ENS text records. ChainID is always set: absence of on-chain
// records degrades to the home chain default, never to an error.
type DeliveryPreference struct {
	ResolvedName string `json:"resolved_name,omitempty"` // empty = no reverse record
	ChainID      int64  `json:"chain_id"`
	TokenSymbol  string `json:"token_symbol"`
}

// Recipient pairs an employee with their resolved delivery preference for the
// duration of one payroll run.
type Recipient struct {
	Employee   Employee           `json:"employee"`
	Preference DeliveryPreference `json:"preference"`
}

// RemoteRecipient is a recipient routed off the home chain.
type RemoteRecipient struct {
	Recipient
	ChainID int64 `json:"chain_id"`
}

// Classification partitions a recipient list by settlement path. Order within
// each group preserves roster order: the batch contract replays Local in the
// order submitted, which is observable on-chain.
type Classification struct {
	Local  []Recipient       `json:"local"`
	Remote []RemoteRecipient `json:"remote"`
}

// Size returns the total number of classified recipients.
func (c Classification) Size() int {
	return len(c.Local) + len(c.Remote)
}
