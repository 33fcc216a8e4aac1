package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/ayusman/signspell/internal/app"
)

// Controller is the part of the app the speller endpoints drive.
type Controller interface {
	State() app.State
	Word() string
	Clear()
	SetActive(active bool) error
}

// SpellerHandler exposes the current word, recognition state and the
// activation toggle.
type SpellerHandler struct {
	ctl Controller
}

// NewSpellerHandler creates a SpellerHandler.
func NewSpellerHandler(ctl Controller) *SpellerHandler {
	return &SpellerHandler{ctl: ctl}
}

type wordResponse struct {
	Word string `json:"word"`
}

type activeRequest struct {
	Active *bool `json:"active"`
}

// State handles GET /api/state.
func (h *SpellerHandler) State(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, h.ctl.State())
}

// Word handles GET and DELETE /api/word.
func (h *SpellerHandler) Word(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, wordResponse{Word: h.ctl.Word()})
	case http.MethodDelete:
		h.ctl.Clear()
		writeJSON(w, http.StatusOK, wordResponse{Word: h.ctl.Word()})
	default:
		methodNotAllowed(w)
	}
}

// Active handles POST /api/active with a body of {"active": bool}.
func (h *SpellerHandler) Active(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req activeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Active == nil {
		writeError(w, http.StatusBadRequest, "Field active is required")
		return
	}

	if err := h.ctl.SetActive(*req.Active); err != nil {
		log.Printf("Failed to set active=%v: %v", *req.Active, err)
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.ctl.State())
}
