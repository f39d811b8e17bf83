package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/familyguardian/guardian/internal/core"
)

// DefaultListLimit is used when List is called with limit <= 0
const DefaultListLimit = 20

// NewAlert holds the caller-supplied fields of an alert
type NewAlert struct {
	Message  string
	Source   string
	Type     core.AlertType
	Keywords []string
}

// AlertStore owns the alert collection. Alerts are kept most-recent-first.
type AlertStore struct {
	col   Collection[core.Alert]
	now   func() time.Time
	newID func() (string, error)
}

// NewAlertStore creates an alert store over col
func NewAlertStore(col Collection[core.Alert]) *AlertStore {
	return &AlertStore{
		col: col,
		now: func() time.Time { return time.Now().UTC() },
		newID: func() (string, error) {
			id, err := uuid.NewV7()
			if err != nil {
				return "", err
			}
			return id.String(), nil
		},
	}
}

// Create persists a new alert at the front of the collection
func (s *AlertStore) Create(ctx context.Context, in NewAlert) (*core.Alert, error) {
	id, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("generate alert id: %w", err)
	}

	alertType := in.Type
	if strings.TrimSpace(string(alertType)) == "" {
		alertType = core.AlertTypeMessage
	}

	keywords := make([]string, len(in.Keywords))
	copy(keywords, in.Keywords)

	alert := core.Alert{
		ID:        core.AlertID(id),
		Message:   in.Message,
		Source:    in.Source,
		Type:      alertType,
		Status:    core.InitialStatus(alertType),
		Keywords:  keywords,
		Timestamp: s.now(),
	}

	err = s.col.Mutate(ctx, func(alerts []core.Alert) ([]core.Alert, error) {
		return append([]core.Alert{alert}, alerts...), nil
	})
	if err != nil {
		return nil, fmt.Errorf("create alert: %w", err)
	}

	return &alert, nil
}

// List returns up to limit alerts, most recent first
func (s *AlertStore) List(ctx context.Context, limit int) ([]core.Alert, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	alerts, err := s.col.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}

	if len(alerts) > limit {
		alerts = alerts[:limit]
	}
	return alerts, nil
}

// Get returns a single alert by ID
func (s *AlertStore) Get(ctx context.Context, id core.AlertID) (*core.Alert, error) {
	alerts, err := s.col.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("get alert: %w", err)
	}

	for i := range alerts {
		if alerts[i].ID == id {
			return &alerts[i], nil
		}
	}
	return nil, core.ErrAlertNotFound
}

// Transition resolves an alert with the given family action.
// A resolved alert is never transitioned again.
func (s *AlertStore) Transition(ctx context.Context, id core.AlertID, action core.Action) (*core.Alert, error) {
	if !action.Valid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidAction, action)
	}

	var resolved core.Alert
	err := s.col.Mutate(ctx, func(alerts []core.Alert) ([]core.Alert, error) {
		for i := range alerts {
			if alerts[i].ID != id {
				continue
			}
			if alerts[i].IsResolved() {
				return nil, core.ErrAlreadyResolved
			}
			at := s.now()
			alerts[i].Status = core.StatusResolved
			alerts[i].ResolvedAction = action
			alerts[i].ResolvedAt = &at
			resolved = alerts[i]
			return alerts, nil
		}
		return nil, core.ErrAlertNotFound
	})
	if err != nil {
		return nil, err
	}

	return &resolved, nil
}

// CountByStatus tallies every stored alert by status
func (s *AlertStore) CountByStatus(ctx context.Context) (map[core.AlertStatus]int, error) {
	alerts, err := s.col.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count alerts: %w", err)
	}

	counts := make(map[core.AlertStatus]int)
	for _, a := range alerts {
		counts[a.Status]++
	}
	return counts, nil
}
