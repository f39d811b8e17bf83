package api

import "net/http"

func (s *Server) handleGetSafeContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.svc.SafeContacts(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, contacts)
}

func (s *Server) handleGetBlockedContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.svc.BlockedContacts(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, contacts)
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Stats(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
