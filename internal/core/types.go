// Package core defines the fundamental types for Family Guardian.
package core

import (
	"time"
)

// -----------------------------------------------------------------------------
// ALERT - A flagged or emergency event awaiting family review
// -----------------------------------------------------------------------------

// AlertID is a type-safe identifier for alerts
type AlertID string

// AlertType is the kind of event that produced an alert.
// Unknown values are kept as-is for display.
type AlertType string

const (
	AlertTypeMessage   AlertType = "message"
	AlertTypeEmergency AlertType = "emergency"
	AlertTypeCall      AlertType = "call"
)

// AlertStatus is the review state of an alert
type AlertStatus string

const (
	StatusPending   AlertStatus = "pending"
	StatusEmergency AlertStatus = "emergency"
	StatusResolved  AlertStatus = "resolved"
)

// Action is a family member's decision on an alert
type Action string

const (
	ActionApprove Action = "approve"
	ActionBlock   Action = "block"
)

// Valid reports whether the action is one the lifecycle understands
func (a Action) Valid() bool {
	return a == ActionApprove || a == ActionBlock
}

// Alert is one persisted flagged or emergency event.
// ID and Timestamp never change after creation.
type Alert struct {
	ID        AlertID     `json:"id"`
	Message   string      `json:"message,omitempty"`
	Source    string      `json:"source"`
	Type      AlertType   `json:"type"`
	Status    AlertStatus `json:"status"`
	Keywords  []string    `json:"keywords"`
	Timestamp time.Time   `json:"timestamp"`

	// Set only when the alert is resolved
	ResolvedAction Action     `json:"resolvedAction,omitempty"`
	ResolvedAt     *time.Time `json:"resolvedAt,omitempty"`
}

// IsResolved reports whether a family member already acted on the alert
func (a *Alert) IsResolved() bool {
	return a.Status == StatusResolved
}

// InitialStatus returns the status a new alert of the given type starts in
func InitialStatus(t AlertType) AlertStatus {
	if t == AlertTypeEmergency {
		return StatusEmergency
	}
	return StatusPending
}

// -----------------------------------------------------------------------------
// CONTACTS - Safe and blocked phone numbers
// -----------------------------------------------------------------------------

// SafeContact is a pre-approved contact shown on the family dashboard
type SafeContact struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// BlockedContact is a number recorded after a family member blocked an alert
type BlockedContact struct {
	ID        string    `json:"id"`
	Phone     string    `json:"phone"`
	Reason    string    `json:"reason"`
	BlockedAt time.Time `json:"blockedAt"`
}

// DefaultSafeContacts returns the contacts seeded on first run
func DefaultSafeContacts() []SafeContact {
	return []SafeContact{
		{ID: 1, Name: "Dr. Smith", Phone: "555-0101"},
		{ID: 2, Name: "Daughter Amy", Phone: "555-0102"},
		{ID: 3, Name: "Pharmacy", Phone: "555-0103"},
	}
}
