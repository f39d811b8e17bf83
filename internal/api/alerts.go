package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/familyguardian/guardian/internal/core"
	"github.com/familyguardian/guardian/internal/guardian"
)

// Client-facing messages
const (
	msgEmptyMessage    = "Please enter a message to check"
	msgAlertNotFound   = "Alert not found"
	msgAlreadyResolved = "Alert already resolved"
	msgInvalidAction   = "Invalid action"
	msgInvalidBody     = "Invalid request body"
	msgMissingAlertID  = "alertId is required"
	msgInternal        = "Internal server error"
)

type flagEventRequest struct {
	Message string `json:"message"`
	Source  string `json:"source"`
	Type    string `json:"type"`
}

type actionAlertRequest struct {
	AlertID alertID `json:"alertId"`
	Action  string  `json:"action"`
}

// alertID accepts either a JSON string or a JSON number, since older
// clients sent numeric ids
type alertID string

func (id *alertID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = alertID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("alertId must be a string or number")
	}
	*id = alertID(n.String())
	return nil
}

func (s *Server) handleFlagEvent(w http.ResponseWriter, r *http.Request) {
	var req flagEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	res, err := s.svc.HandleEvent(r.Context(), guardian.Event{
		Message: req.Message,
		Source:  req.Source,
		Type:    core.AlertType(strings.TrimSpace(req.Type)),
	})
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	if res.Status != guardian.StatusAlertCreated {
		s.respondJSON(w, http.StatusOK, map[string]interface{}{
			"status":     res.Status,
			"suspicious": false,
		})
		return
	}

	keywords := res.KeywordsFound
	if keywords == nil {
		keywords = []string{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":        res.Status,
		"suspicious":    res.Suspicious,
		"keywordsFound": keywords,
		"alertType":     res.AlertType,
	})
}

func (s *Server) handleGetAlerts(w http.ResponseWriter, r *http.Request) {
	limit := s.listLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	alerts, err := s.svc.ListAlerts(r.Context(), limit)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, alerts)
}

func (s *Server) handleActionAlert(w http.ResponseWriter, r *http.Request) {
	var req actionAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if strings.TrimSpace(string(req.AlertID)) == "" {
		s.respondError(w, http.StatusBadRequest, msgMissingAlertID)
		return
	}

	res, err := s.svc.HandleAction(r.Context(), core.AlertID(req.AlertID), core.Action(req.Action))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, res)
}

// respondServiceError maps lifecycle errors to status codes
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidInput):
		s.respondError(w, http.StatusBadRequest, msgEmptyMessage)
	case errors.Is(err, core.ErrInvalidAction):
		s.respondError(w, http.StatusBadRequest, msgInvalidAction)
	case errors.Is(err, core.ErrAlertNotFound):
		s.respondError(w, http.StatusNotFound, msgAlertNotFound)
	case errors.Is(err, core.ErrAlreadyResolved):
		s.respondError(w, http.StatusConflict, msgAlreadyResolved)
	default:
		s.log.WithFields(map[string]interface{}{
			"request_id": middleware.GetReqID(r.Context()),
			"path":       r.URL.Path,
		}).WithError(err).Error("request failed")
		s.respondError(w, http.StatusInternalServerError, msgInternal)
	}
}
