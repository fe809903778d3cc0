// Package models defines the persisted domain types shared across the
// engine: sessions, the append-only message log, and handoff records.
package models

import "time"

// CustomerTier classifies who is on the other end of a session.
type CustomerTier string

const (
	TierProspect CustomerTier = "prospect"
	TierCustomer CustomerTier = "customer"
	TierVIP      CustomerTier = "vip"
)

// ValidTier reports whether t is one of the known customer tiers.
func ValidTier(t CustomerTier) bool {
	switch t {
	case TierProspect, TierCustomer, TierVIP:
		return true
	}
	return false
}

// QualificationStatus is the lead-qualification state of a session. It only
// moves forward, except for the explicit restart signal.
type QualificationStatus string

const (
	StatusNotStarted  QualificationStatus = "not_started"
	StatusInProgress  QualificationStatus = "in_progress"
	StatusQualified   QualificationStatus = "qualified"
	StatusUnqualified QualificationStatus = "unqualified"
)

// AgentType names the specialized agent strategies.
type AgentType string

const (
	AgentSBDR            AgentType = "sbdr"
	AgentAccountManager  AgentType = "account_manager"
	AgentCustomerSuccess AgentType = "customer_success"
)

// Session is the durable state of one customer conversation: identity, the
// qualification profile built up message by message, and the agent currently
// assigned. BudgetMin and BudgetMax are both nil when no budget signal has
// been seen; a set Min with a nil Max is an open-ended "at least" range.
type Session struct {
	ID           string       `gorm:"primaryKey;size:64"`
	CustomerName string       `gorm:"size:128;not null;default:Guest"`
	CustomerTier CustomerTier `gorm:"size:32;not null;default:prospect"`
	// CustomerID is the storefront customer identifier used for order
	// lookups. Empty for anonymous prospects.
	CustomerID string `gorm:"size:64"`

	BudgetMin       *int
	BudgetMax       *int
	ProductInterest string `gorm:"size:64"`
	UseCase         string `gorm:"size:64"`
	Timeline        string `gorm:"size:64"`

	Status          QualificationStatus `gorm:"size:32;not null;default:not_started"`
	EngagementScore int
	MessageCount    int
	CurrentAgent    AgentType `gorm:"size:32"`
	Escalated       bool

	CreatedAt      time.Time
	LastActivityAt time.Time
}

// HasBudget reports whether any budget signal has been recorded.
func (s *Session) HasBudget() bool {
	return s.BudgetMin != nil || s.BudgetMax != nil
}

// SignalCount counts the distinct qualification signal groups present on the
// profile. Use case and timeline share a group: either one stands in for
// "we know what this is for".
func (s *Session) SignalCount() int {
	n := 0
	if s.HasBudget() {
		n++
	}
	if s.ProductInterest != "" {
		n++
	}
	if s.UseCase != "" || s.Timeline != "" {
		n++
	}
	return n
}
