package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/ayusman/signspell/internal/detector"
	"github.com/ayusman/signspell/internal/gesture"
	"github.com/ayusman/signspell/internal/store"
)

// HandSource supplies the most recently detected hand for recording.
type HandSource interface {
	LastHand() (detector.HandLandmarks, bool)
}

// SamplesHandler serves the recorded sample collection:
//
//	GET    /api/samples[?symbol=X]
//	POST   /api/samples
//	GET    /api/samples/average?symbol=X
//	GET    /api/samples/{id}
//	DELETE /api/samples/{id}
type SamplesHandler struct {
	store      *store.Store
	hands      HandSource
	classifier *gesture.Classifier
}

// NewSamplesHandler creates a SamplesHandler. hands may be nil, in which case
// POST requests must carry landmarks.
func NewSamplesHandler(s *store.Store, hands HandSource, c *gesture.Classifier) *SamplesHandler {
	if c == nil {
		c = gesture.NewClassifier()
	}
	return &SamplesHandler{store: s, hands: hands, classifier: c}
}

// ServeHTTP implements the http.Handler interface.
func (h *SamplesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/samples")
	path = strings.Trim(path, "/")

	switch {
	case path == "":
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			methodNotAllowed(w)
		}
	case path == "average":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.average(w, r)
	default:
		switch r.Method {
		case http.MethodGet:
			h.get(w, path)
		case http.MethodDelete:
			h.delete(w, path)
		default:
			methodNotAllowed(w)
		}
	}
}

type createSampleRequest struct {
	Symbol     string            `json:"symbol"`
	Handedness string            `json:"handedness"`
	Landmarks  detector.JointSet `json:"landmarks"`
}

type listSamplesResponse struct {
	Samples []*store.Sample `json:"samples"`
	Counts  map[string]int  `json:"counts"`
}

type averageResponse struct {
	Symbol     string            `json:"symbol"`
	Count      int               `json:"count"`
	Landmarks  detector.JointSet `json:"landmarks"`
	Classified gesture.Result    `json:"classified"`
}

func (h *SamplesHandler) list(w http.ResponseWriter, r *http.Request) {
	samples, err := h.store.Samples().List(r.URL.Query().Get("symbol"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list samples")
		return
	}
	counts, err := h.store.Samples().CountBySymbol()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count samples")
		return
	}

	if samples == nil {
		samples = []*store.Sample{}
	}
	writeJSON(w, http.StatusOK, listSamplesResponse{Samples: samples, Counts: counts})
}

// create stores a sample. Without landmarks in the body the last hand seen
// by the pipeline is recorded. Landmarks are normalized before storage.
func (h *SamplesHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createSampleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	if req.Symbol == "" {
		writeError(w, http.StatusBadRequest, "Symbol is required")
		return
	}

	var hand detector.HandLandmarks
	if len(req.Landmarks) == 0 {
		if h.hands == nil {
			writeError(w, http.StatusBadRequest, "Landmarks are required")
			return
		}
		last, ok := h.hands.LastHand()
		if !ok {
			writeError(w, http.StatusConflict, "No hand has been detected yet")
			return
		}
		hand = last
	} else {
		parsed, ok := detector.FromJoints(req.Landmarks, req.Handedness, 1)
		if !ok {
			writeError(w, http.StatusBadRequest, "Landmarks must hold exactly 21 points")
			return
		}
		hand = parsed
	}

	sample := &store.Sample{
		Symbol:     req.Symbol,
		Handedness: hand.Handedness,
		Landmarks:  hand.Normalize().Joints(),
	}
	if err := h.store.Samples().Create(sample); err != nil {
		if errors.Is(err, store.ErrInvalidSample) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to save sample")
		return
	}

	log.Printf("Recorded sample %s for %s", sample.ID, sample.Symbol)
	writeJSON(w, http.StatusCreated, sample)
}

func (h *SamplesHandler) get(w http.ResponseWriter, id string) {
	sample, err := h.store.Samples().GetByID(id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Sample not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get sample")
		return
	}
	writeJSON(w, http.StatusOK, sample)
}

func (h *SamplesHandler) delete(w http.ResponseWriter, id string) {
	err := h.store.Samples().Delete(id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Sample not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete sample")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// average returns the mean pose of a symbol's samples and how the classifier
// reads it.
func (h *SamplesHandler) average(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(r.URL.Query().Get("symbol"))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "Symbol is required")
		return
	}

	samples, err := h.store.Samples().List(symbol)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list samples")
		return
	}
	if len(samples) == 0 {
		writeError(w, http.StatusNotFound, "No samples for symbol")
		return
	}

	sets := make([]detector.JointSet, len(samples))
	for i, s := range samples {
		sets[i] = s.Landmarks
	}
	avg, err := gesture.AveragePose(sets)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, averageResponse{
		Symbol:     symbol,
		Count:      len(samples),
		Landmarks:  avg,
		Classified: h.classifier.Classify(avg),
	})
}

// Evaluate handles GET /api/evaluate by classifying every stored sample.
func (h *SamplesHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	samples, err := h.store.Samples().List(r.URL.Query().Get("symbol"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list samples")
		return
	}

	labeled := make([]gesture.LabeledSample, len(samples))
	for i, s := range samples {
		labeled[i] = gesture.LabeledSample{Symbol: s.Symbol, Joints: s.Landmarks}
	}
	writeJSON(w, http.StatusOK, h.classifier.Evaluate(labeled))
}
