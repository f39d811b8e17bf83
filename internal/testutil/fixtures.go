// Package testutil provides shared test fixtures for Family Guardian.
package testutil

import (
	"time"

	"github.com/familyguardian/guardian/internal/core"
)

// MessageFixture is a sample message with the trigger phrases the default
// classifier should report for it, in list order
type MessageFixture struct {
	Name     string
	Text     string
	Keywords []string
}

// ScamMessages returns messages the default phrase list flags
func ScamMessages() []MessageFixture {
	return []MessageFixture{
		{"bank", "URGENT: bank verification required today", []string{"urgent", "bank verification"}},
		{"irs", "A lawsuit has been filed. Wire money to settle.", []string{"lawsuit", "wire money"}},
		{"lottery", "Congratulations PRIZE WINNER! Claim your free gift", []string{"prize winner", "free gift"}},
		{"ssa", "Your Social Security number is suspended", []string{"social security"}},
		{"account", "Account suspended. Verify your account within 24h", []string{"account suspended", "verify your account"}},
		{"offer", "Limited time offer, urgent reply needed", []string{"urgent", "limited time"}},
	}
}

// SafeMessages returns messages the default phrase list does not flag
func SafeMessages() []MessageFixture {
	return []MessageFixture{
		{"lunch", "Are we still on for lunch Sunday?", nil},
		{"pharmacy", "Your prescription is ready for pickup", nil},
		{"family", "Call me back when you can, love Amy", nil},
	}
}

// AlertBuilder builds alerts for store and handler tests
type AlertBuilder struct {
	alert core.Alert
}

// NewAlertBuilder starts a pending message alert created now
func NewAlertBuilder(id string) *AlertBuilder {
	return &AlertBuilder{
		alert: core.Alert{
			ID:        core.AlertID(id),
			Source:    "manual_check",
			Type:      core.AlertTypeMessage,
			Status:    core.StatusPending,
			Keywords:  []string{},
			Timestamp: time.Now().UTC(),
		},
	}
}

// WithMessage sets the message and keywords
func (b *AlertBuilder) WithMessage(msg string, keywords ...string) *AlertBuilder {
	b.alert.Message = msg
	if keywords != nil {
		b.alert.Keywords = keywords
	}
	return b
}

// WithSource sets the source label
func (b *AlertBuilder) WithSource(source string) *AlertBuilder {
	b.alert.Source = source
	return b
}

// At sets the creation time
func (b *AlertBuilder) At(t time.Time) *AlertBuilder {
	b.alert.Timestamp = t
	return b
}

// AsEmergency marks the alert as an emergency button press
func (b *AlertBuilder) AsEmergency() *AlertBuilder {
	b.alert.Type = core.AlertTypeEmergency
	b.alert.Status = core.StatusEmergency
	return b
}

// Resolved marks the alert as resolved by action
func (b *AlertBuilder) Resolved(action core.Action) *AlertBuilder {
	at := b.alert.Timestamp.Add(time.Minute)
	b.alert.Status = core.StatusResolved
	b.alert.ResolvedAction = action
	b.alert.ResolvedAt = &at
	return b
}

// Build returns the constructed alert
func (b *AlertBuilder) Build() core.Alert {
	return b.alert
}
