package models

import (
	"bytes"
	"slices"
	"time"

	"payout/pkg/domain"
)

// Project is a registered beneficiary. Contracts are the addresses whose
// usage the project is paid for; each belongs to at most one project.
type Project struct {
	ID               domain.ProjectID
	Owner            domain.Address
	RewardsRecipient domain.Address
	MetadataURI      string
	Contracts        []domain.Address
	ActiveFromPeriod domain.Period
	// ActiveToPeriod is the period of the last suspension, 0 while active.
	ActiveToPeriod domain.Period
	// Suspended is authoritative; ActiveToPeriod alone cannot express a
	// suspension during period 0.
	Suspended bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *Project) IsActive() bool {
	return !p.Suspended
}

func (p *Project) HasContract(addr domain.Address) bool {
	return slices.Contains(p.Contracts, addr)
}

// Suspend stops the project from requesting withdrawals from period on.
func (p *Project) Suspend(period domain.Period, now time.Time) {
	p.Suspended = true
	p.ActiveToPeriod = period
	p.UpdatedAt = now
}

// Enable restarts the active window at period.
func (p *Project) Enable(period domain.Period, now time.Time) {
	p.Suspended = false
	p.ActiveFromPeriod = period
	p.ActiveToPeriod = 0
	p.UpdatedAt = now
}

// Clone returns a deep copy.
func (p *Project) Clone() *Project {
	cp := *p
	cp.Contracts = slices.Clone(p.Contracts)
	return &cp
}

// SortAddresses orders addresses by their bytes, the order stores return.
func SortAddresses(addrs []domain.Address) {
	slices.SortFunc(addrs, func(a, b domain.Address) int {
		return bytes.Compare(a.Bytes(), b.Bytes())
	})
}
