// Package guardian coordinates the alert lifecycle: screening inbound
// events, recording alerts, and applying family decisions.
package guardian

import (
	"context"
	"fmt"
	"strings"

	"github.com/familyguardian/guardian/internal/classifier"
	"github.com/familyguardian/guardian/internal/core"
	"github.com/familyguardian/guardian/internal/logging"
	"github.com/familyguardian/guardian/internal/storage"
)

// Result statuses reported to callers
const (
	StatusAlertCreated = "alert_created"
	StatusOK           = "ok"
	StatusSuccess      = "success"
)

// AlertRepository is the alert persistence the service needs
type AlertRepository interface {
	Create(ctx context.Context, in storage.NewAlert) (*core.Alert, error)
	List(ctx context.Context, limit int) ([]core.Alert, error)
	Get(ctx context.Context, id core.AlertID) (*core.Alert, error)
	Transition(ctx context.Context, id core.AlertID, action core.Action) (*core.Alert, error)
	CountByStatus(ctx context.Context) (map[core.AlertStatus]int, error)
}

// ContactRepository is the contact persistence the service needs
type ContactRepository interface {
	ListSafe(ctx context.Context) ([]core.SafeContact, error)
	ListBlocked(ctx context.Context) ([]core.BlockedContact, error)
	AddBlocked(ctx context.Context, phone, reason string) (*core.BlockedContact, error)
	ExtractPhone(alert *core.Alert) (string, bool)
}

// Recorder observes lifecycle events, typically for metrics
type Recorder interface {
	EventReceived(t core.AlertType)
	AlertCreated(a *core.Alert)
	ActionApplied(action core.Action)
	ContactBlocked()
}

type nopRecorder struct{}

func (nopRecorder) EventReceived(core.AlertType) {}
func (nopRecorder) AlertCreated(*core.Alert)     {}
func (nopRecorder) ActionApplied(core.Action)    {}
func (nopRecorder) ContactBlocked()              {}

// Event is an inbound submission from the elderly user's device
type Event struct {
	Message string         `json:"message"`
	Source  string         `json:"source"`
	Type    core.AlertType `json:"type"`
}

// EventResult describes what happened to an event
type EventResult struct {
	Status        string         `json:"status"`
	Suspicious    bool           `json:"suspicious"`
	KeywordsFound []string       `json:"keywordsFound,omitempty"`
	AlertType     core.AlertType `json:"alertType,omitempty"`
	Alert         *core.Alert    `json:"-"`
}

// ActionResult describes an applied family action
type ActionResult struct {
	Status       string      `json:"status"`
	Action       core.Action `json:"action"`
	BlockedPhone string      `json:"blockedPhone,omitempty"`
	Alert        *core.Alert `json:"-"`
}

// Stats summarizes the dashboard counters
type Stats struct {
	PendingAlerts     int `json:"pendingAlerts"`
	EmergencyAlerts   int `json:"emergencyAlerts"`
	SafeContactsCount int `json:"safeContactsCount"`
}

// Service is the alert lifecycle coordinator
type Service struct {
	classifier *classifier.Classifier
	alerts     AlertRepository
	contacts   ContactRepository
	recorder   Recorder
	log        *logging.Logger
}

// Option configures a Service
type Option func(*Service)

// WithRecorder attaches a lifecycle observer
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithLogger replaces the default logger
func WithLogger(l *logging.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// NewService creates a coordinator. A nil classifier uses the default phrases.
func NewService(c *classifier.Classifier, alerts AlertRepository, contacts ContactRepository, opts ...Option) *Service {
	if c == nil {
		c = classifier.New(nil)
	}
	s := &Service{
		classifier: c,
		alerts:     alerts,
		contacts:   contacts,
		recorder:   nopRecorder{},
		log:        logging.WithField("component", "guardian"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HandleEvent screens an event and records an alert when it is suspicious
// or an emergency. Emergencies are recorded even without a message.
func (s *Service) HandleEvent(ctx context.Context, ev Event) (*EventResult, error) {
	if strings.TrimSpace(string(ev.Type)) == "" {
		ev.Type = core.AlertTypeMessage
	}
	if ev.Type != core.AlertTypeEmergency && strings.TrimSpace(ev.Message) == "" {
		return nil, fmt.Errorf("%w: message is required", core.ErrInvalidInput)
	}

	s.recorder.EventReceived(ev.Type)

	result := s.classifier.Classify(ev.Message)
	if !result.IsSuspicious && ev.Type != core.AlertTypeEmergency {
		return &EventResult{Status: StatusOK, Suspicious: false}, nil
	}

	alert, err := s.alerts.Create(ctx, storage.NewAlert{
		Message:  ev.Message,
		Source:   ev.Source,
		Type:     ev.Type,
		Keywords: result.Keywords,
	})
	if err != nil {
		return nil, err
	}

	s.recorder.AlertCreated(alert)
	s.log.WithFields(map[string]interface{}{
		"alert_id": alert.ID,
		"type":     alert.Type,
		"keywords": len(alert.Keywords),
	}).Info("alert created")

	return &EventResult{
		Status:        StatusAlertCreated,
		Suspicious:    result.IsSuspicious,
		KeywordsFound: alert.Keywords,
		AlertType:     alert.Type,
		Alert:         alert,
	}, nil
}

// HandleAction resolves an alert. Blocking first records the first phone
// number found in the alert as a blocked contact, then resolves the alert,
// so a failed block leaves the alert open for a retry.
func (s *Service) HandleAction(ctx context.Context, id core.AlertID, action core.Action) (*ActionResult, error) {
	if !action.Valid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidAction, action)
	}

	var phone string
	if action == core.ActionBlock {
		var err error
		if phone, err = s.blockSender(ctx, id); err != nil {
			return nil, err
		}
	}

	alert, err := s.alerts.Transition(ctx, id, action)
	if err != nil {
		if phone != "" {
			s.log.WithField("alert_id", id).WithError(err).Warn("contact blocked but alert not resolved")
		}
		return nil, err
	}

	s.recorder.ActionApplied(action)
	s.log.WithFields(map[string]interface{}{
		"alert_id": alert.ID,
		"action":   action,
	}).Info("alert resolved")

	return &ActionResult{
		Status:       StatusSuccess,
		Action:       action,
		BlockedPhone: phone,
		Alert:        alert,
	}, nil
}

// blockSender adds the phone number of an open alert to the blocked list.
// It returns an empty phone when the alert carries none.
func (s *Service) blockSender(ctx context.Context, id core.AlertID) (string, error) {
	alert, err := s.alerts.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if alert.Status == core.StatusResolved {
		return "", core.ErrAlreadyResolved
	}

	phone, ok := s.contacts.ExtractPhone(alert)
	if !ok {
		s.log.WithField("alert_id", alert.ID).Debug("no phone number to block")
		return "", nil
	}

	if _, err := s.contacts.AddBlocked(ctx, phone, storage.BlockReason); err != nil {
		s.log.WithField("alert_id", alert.ID).WithError(err).Error("failed to record blocked contact")
		return "", err
	}
	s.recorder.ContactBlocked()
	return phone, nil
}

// Stats computes dashboard counters from the current store contents
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	counts, err := s.alerts.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	safe, err := s.contacts.ListSafe(ctx)
	if err != nil {
		return nil, err
	}

	return &Stats{
		PendingAlerts:     counts[core.StatusPending],
		EmergencyAlerts:   counts[core.StatusEmergency],
		SafeContactsCount: len(safe),
	}, nil
}

// ListAlerts returns up to limit alerts, most recent first
func (s *Service) ListAlerts(ctx context.Context, limit int) ([]core.Alert, error) {
	return s.alerts.List(ctx, limit)
}

// SafeContacts returns the pre-approved contacts
func (s *Service) SafeContacts(ctx context.Context) ([]core.SafeContact, error) {
	return s.contacts.ListSafe(ctx)
}

// BlockedContacts returns every blocked contact
func (s *Service) BlockedContacts(ctx context.Context) ([]core.BlockedContact, error) {
	return s.contacts.ListBlocked(ctx)
}
