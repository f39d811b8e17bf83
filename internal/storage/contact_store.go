package storage

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/familyguardian/guardian/internal/core"
)

// BlockReason is recorded on contacts blocked from the family dashboard
const BlockReason = "Blocked by family member"

// phonePattern matches 10-digit numbers with optional - or . separators
var phonePattern = regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)

// ContactStore owns the safe and blocked contact collections
type ContactStore struct {
	safe    Collection[core.SafeContact]
	blocked Collection[core.BlockedContact]
	now     func() time.Time
}

// NewContactStore creates a contact store over the two collections
func NewContactStore(safe Collection[core.SafeContact], blocked Collection[core.BlockedContact]) *ContactStore {
	return &ContactStore{
		safe:    safe,
		blocked: blocked,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ListSafe returns every safe contact
func (s *ContactStore) ListSafe(ctx context.Context) ([]core.SafeContact, error) {
	contacts, err := s.safe.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list safe contacts: %w", err)
	}
	return contacts, nil
}

// ListBlocked returns every blocked contact in the order they were blocked
func (s *ContactStore) ListBlocked(ctx context.Context) ([]core.BlockedContact, error) {
	contacts, err := s.blocked.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list blocked contacts: %w", err)
	}
	return contacts, nil
}

// AddBlocked appends a blocked contact. Phones are not deduplicated.
func (s *ContactStore) AddBlocked(ctx context.Context, phone, reason string) (*core.BlockedContact, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate contact id: %w", err)
	}

	contact := core.BlockedContact{
		ID:        id.String(),
		Phone:     phone,
		Reason:    reason,
		BlockedAt: s.now(),
	}

	err = s.blocked.Mutate(ctx, func(contacts []core.BlockedContact) ([]core.BlockedContact, error) {
		return append(contacts, contact), nil
	})
	if err != nil {
		return nil, fmt.Errorf("add blocked contact: %w", err)
	}

	return &contact, nil
}

// ExtractPhone finds the first phone number in the alert's message, or in
// its source when the message is empty
func (s *ContactStore) ExtractPhone(alert *core.Alert) (string, bool) {
	return ExtractPhone(alert)
}

// ExtractPhone is the store-independent form of ContactStore.ExtractPhone
func ExtractPhone(alert *core.Alert) (string, bool) {
	if alert == nil {
		return "", false
	}
	text := alert.Message
	if text == "" {
		text = alert.Source
	}
	match := phonePattern.FindString(text)
	if match == "" {
		return "", false
	}
	return match, true
}
