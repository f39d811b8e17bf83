package guardian

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/familyguardian/guardian/internal/classifier"
	"github.com/familyguardian/guardian/internal/core"
	"github.com/familyguardian/guardian/internal/storage"
)

type countingRecorder struct {
	events  map[core.AlertType]int
	created int
	actions map[core.Action]int
	blocked int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		events:  make(map[core.AlertType]int),
		actions: make(map[core.Action]int),
	}
}

func (r *countingRecorder) EventReceived(t core.AlertType) { r.events[t]++ }
func (r *countingRecorder) AlertCreated(*core.Alert)       { r.created++ }
func (r *countingRecorder) ActionApplied(a core.Action)    { r.actions[a]++ }
func (r *countingRecorder) ContactBlocked()                { r.blocked++ }

type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	blocked  *storage.MemoryCollection[core.BlockedContact]
	alerts   *storage.AlertStore
	contacts *storage.ContactStore
	recorder *countingRecorder
	svc      *Service
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.blocked = storage.NewMemoryCollection[core.BlockedContact](storage.BlockedContactsCollection, nil)
	s.alerts = storage.NewAlertStore(storage.NewMemoryCollection[core.Alert](storage.AlertsCollection, nil))
	s.contacts = storage.NewContactStore(
		storage.NewMemoryCollection(storage.SafeContactsCollection, core.DefaultSafeContacts()),
		s.blocked,
	)
	s.recorder = newCountingRecorder()
	s.svc = NewService(classifier.New(nil), s.alerts, s.contacts, WithRecorder(s.recorder))
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) allAlerts() []core.Alert {
	alerts, err := s.alerts.List(s.ctx, 1000)
	s.Require().NoError(err)
	return alerts
}

// ============================================================================
// HandleEvent
// ============================================================================

func (s *ServiceSuite) TestHandleEvent_Suspicious() {
	res, err := s.svc.HandleEvent(s.ctx, Event{
		Message: "URGENT: Wire money today",
		Source:  "manual_check",
		Type:    core.AlertTypeMessage,
	})
	s.Require().NoError(err)

	s.Equal(StatusAlertCreated, res.Status)
	s.True(res.Suspicious)
	s.Equal([]string{"urgent", "wire money"}, res.KeywordsFound)
	s.Equal(core.AlertTypeMessage, res.AlertType)
	s.Require().NotNil(res.Alert)
	s.Equal(core.StatusPending, res.Alert.Status)

	alerts := s.allAlerts()
	s.Require().Len(alerts, 1)
	s.Equal(res.Alert.ID, alerts[0].ID)
	s.Equal("manual_check", alerts[0].Source)
	s.Equal(1, s.recorder.created)
}

func (s *ServiceSuite) TestHandleEvent_NotSuspicious() {
	res, err := s.svc.HandleEvent(s.ctx, Event{Message: "See you at lunch on Sunday", Source: "manual_check"})
	s.Require().NoError(err)

	s.Equal(StatusOK, res.Status)
	s.False(res.Suspicious)
	s.Empty(res.KeywordsFound)
	s.Nil(res.Alert)
	s.Empty(s.allAlerts())
	s.Equal(1, s.recorder.events[core.AlertTypeMessage])
	s.Zero(s.recorder.created)
}

func (s *ServiceSuite) TestHandleEvent_EmergencyWithoutMessage() {
	res, err := s.svc.HandleEvent(s.ctx, Event{Source: "emergency_button", Type: core.AlertTypeEmergency})
	s.Require().NoError(err)

	s.Equal(StatusAlertCreated, res.Status)
	s.False(res.Suspicious, "emergency does not force suspicious")
	s.Empty(res.KeywordsFound)
	s.Equal(core.AlertTypeEmergency, res.AlertType)
	s.Equal(core.StatusEmergency, res.Alert.Status)
	s.NotNil(res.Alert.Keywords)
}

func (s *ServiceSuite) TestHandleEvent_EmergencyKeepsKeywords() {
	res, err := s.svc.HandleEvent(s.ctx, Event{Message: "lawsuit threat", Type: core.AlertTypeEmergency})
	s.Require().NoError(err)

	s.True(res.Suspicious)
	s.Equal([]string{"lawsuit"}, res.Alert.Keywords)
}

func (s *ServiceSuite) TestHandleEvent_BlankMessage() {
	for _, msg := range []string{"", "   \t"} {
		_, err := s.svc.HandleEvent(s.ctx, Event{Message: msg, Source: "manual_check"})
		s.ErrorIs(err, core.ErrInvalidInput)
	}
	s.Empty(s.allAlerts())
	s.Empty(s.recorder.events)
}

func (s *ServiceSuite) TestHandleEvent_DefaultsType() {
	res, err := s.svc.HandleEvent(s.ctx, Event{Message: "free gift inside"})
	s.Require().NoError(err)
	s.Equal(core.AlertTypeMessage, res.AlertType)
}

func (s *ServiceSuite) TestHandleEvent_CallType() {
	res, err := s.svc.HandleEvent(s.ctx, Event{Message: "social security office calling", Source: "555-222-3333", Type: core.AlertTypeCall})
	s.Require().NoError(err)
	s.Equal(core.AlertTypeCall, res.AlertType)
	s.Equal(core.StatusPending, res.Alert.Status)
}

// ============================================================================
// HandleAction
// ============================================================================

func (s *ServiceSuite) createAlert(message, source string) *core.Alert {
	res, err := s.svc.HandleEvent(s.ctx, Event{Message: message, Source: source})
	s.Require().NoError(err)
	s.Require().NotNil(res.Alert)
	return res.Alert
}

func (s *ServiceSuite) TestHandleAction_Approve() {
	alert := s.createAlert("urgent call me", "manual_check")

	res, err := s.svc.HandleAction(s.ctx, alert.ID, core.ActionApprove)
	s.Require().NoError(err)

	s.Equal(StatusSuccess, res.Status)
	s.Equal(core.ActionApprove, res.Action)
	s.Empty(res.BlockedPhone)
	s.Equal(core.StatusResolved, res.Alert.Status)

	blocked, err := s.contacts.ListBlocked(s.ctx)
	s.Require().NoError(err)
	s.Empty(blocked)
}

func (s *ServiceSuite) TestHandleAction_BlockWithPhone() {
	alert := s.createAlert("URGENT call 555-123-4567 about your account", "manual_check")

	res, err := s.svc.HandleAction(s.ctx, alert.ID, core.ActionBlock)
	s.Require().NoError(err)
	s.Equal("555-123-4567", res.BlockedPhone)

	blocked, err := s.contacts.ListBlocked(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(blocked, 1)
	s.Equal("555-123-4567", blocked[0].Phone)
	s.Equal("Blocked by family member", blocked[0].Reason)
	s.Equal(1, s.recorder.blocked)
}

func (s *ServiceSuite) TestHandleAction_BlockWithoutPhone() {
	alert := s.createAlert("limited time offer", "manual_check")

	res, err := s.svc.HandleAction(s.ctx, alert.ID, core.ActionBlock)
	s.Require().NoError(err)
	s.Empty(res.BlockedPhone)
	s.Equal(core.StatusResolved, res.Alert.Status)

	blocked, err := s.contacts.ListBlocked(s.ctx)
	s.Require().NoError(err)
	s.Empty(blocked)
}

func (s *ServiceSuite) TestHandleAction_NotFound() {
	alert := s.createAlert("urgent", "manual_check")

	_, err := s.svc.HandleAction(s.ctx, "does-not-exist", core.ActionBlock)
	s.ErrorIs(err, core.ErrAlertNotFound)

	alerts := s.allAlerts()
	s.Require().Len(alerts, 1)
	s.Equal(alert.ID, alerts[0].ID)
	s.Equal(core.StatusPending, alerts[0].Status)
	s.Empty(s.recorder.actions)
}

func (s *ServiceSuite) TestHandleAction_AlreadyResolved() {
	alert := s.createAlert("urgent 555-123-4567", "manual_check")

	_, err := s.svc.HandleAction(s.ctx, alert.ID, core.ActionBlock)
	s.Require().NoError(err)

	_, err = s.svc.HandleAction(s.ctx, alert.ID, core.ActionBlock)
	s.ErrorIs(err, core.ErrAlreadyResolved)

	blocked, err := s.contacts.ListBlocked(s.ctx)
	s.Require().NoError(err)
	s.Len(blocked, 1)
}

func (s *ServiceSuite) TestHandleAction_InvalidAction() {
	alert := s.createAlert("urgent", "manual_check")

	_, err := s.svc.HandleAction(s.ctx, alert.ID, "snooze")
	s.ErrorIs(err, core.ErrInvalidAction)
	s.Equal(core.StatusPending, s.allAlerts()[0].Status)
}

func (s *ServiceSuite) TestHandleAction_BlockedStoreFailure() {
	alert := s.createAlert("urgent 555-123-4567", "manual_check")
	s.blocked.FailWith(errors.New("disk full"))

	_, err := s.svc.HandleAction(s.ctx, alert.ID, core.ActionBlock)
	s.ErrorIs(err, core.ErrStorageUnavailable)
	s.Equal(core.StatusPending, s.allAlerts()[0].Status, "alert stays open after a failed block")
	s.Empty(s.recorder.actions)

	s.blocked.FailWith(nil)
	res, err := s.svc.HandleAction(s.ctx, alert.ID, core.ActionBlock)
	s.Require().NoError(err)
	s.Equal("555-123-4567", res.BlockedPhone)
	s.Equal(core.StatusResolved, s.allAlerts()[0].Status)

	blocked, err := s.contacts.ListBlocked(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(blocked, 1)
	s.Equal("555-123-4567", blocked[0].Phone)
}

func (s *ServiceSuite) TestHandleAction_BlockPhoneFromSource() {
	alert, err := s.alerts.Create(s.ctx, storage.NewAlert{
		Source: "555-123-4567 (unknown caller)",
		Type:   core.AlertTypeCall,
	})
	s.Require().NoError(err)
	s.Empty(alert.Message)

	res, err := s.svc.HandleAction(s.ctx, alert.ID, core.ActionBlock)
	s.Require().NoError(err)
	s.Equal("555-123-4567", res.BlockedPhone)

	blocked, err := s.contacts.ListBlocked(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(blocked, 1)
	s.Equal("555-123-4567", blocked[0].Phone)
	s.Equal(1, s.recorder.blocked)
}

func (s *ServiceSuite) TestHandleAction_InvalidActionUnknownAlert() {
	_, err := s.svc.HandleAction(s.ctx, "does-not-exist", "snooze")
	s.ErrorIs(err, core.ErrInvalidAction)
}

// ============================================================================
// Stats and listings
// ============================================================================

func (s *ServiceSuite) TestStats() {
	stats, err := s.svc.Stats(s.ctx)
	s.Require().NoError(err)
	s.Equal(Stats{SafeContactsCount: 3}, *stats)

	a := s.createAlert("urgent", "manual_check")
	s.createAlert("prize winner", "manual_check")
	_, err = s.svc.HandleEvent(s.ctx, Event{Type: core.AlertTypeEmergency, Source: "emergency_button"})
	s.Require().NoError(err)
	_, err = s.svc.HandleAction(s.ctx, a.ID, core.ActionApprove)
	s.Require().NoError(err)

	stats, err = s.svc.Stats(s.ctx)
	s.Require().NoError(err)
	s.Equal(Stats{PendingAlerts: 1, EmergencyAlerts: 1, SafeContactsCount: 3}, *stats)
}

func (s *ServiceSuite) TestListings() {
	s.createAlert("urgent one", "manual_check")
	s.createAlert("urgent two", "manual_check")

	alerts, err := s.svc.ListAlerts(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(alerts, 1)
	s.Equal("urgent two", alerts[0].Message)

	safe, err := s.svc.SafeContacts(s.ctx)
	s.Require().NoError(err)
	s.Len(safe, 3)

	blocked, err := s.svc.BlockedContacts(s.ctx)
	s.Require().NoError(err)
	s.Empty(blocked)
}

// ============================================================================
// Construction
// ============================================================================

func TestNewService_Defaults(t *testing.T) {
	stores := storage.NewMemoryStores()
	svc := NewService(nil, stores.Alerts, stores.Contacts, WithRecorder(nil), WithLogger(nil))

	require.NotNil(t, svc.classifier)
	assert.Equal(t, classifier.DefaultPhrases, svc.classifier.Phrases())
	assert.IsType(t, nopRecorder{}, svc.recorder)
	assert.NotNil(t, svc.log)
}
