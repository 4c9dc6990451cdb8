package handler

import "net/http"

// PostMessage handles POST /trips/{tripId}/chat.
func (s *Server) PostMessage(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripId")
	if !ok {
		return
	}
	var body ChatRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	m, err := s.svc.Chat.Post(r.Context(), caller(r), tripID, body.Content)
	if err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// ListMessages handles GET /trips/{tripId}/chat.
func (s *Server) ListMessages(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripId")
	if !ok {
		return
	}
	msgs, err := s.svc.Chat.List(r.Context(), caller(r), tripID)
	if err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(msgs))
}
