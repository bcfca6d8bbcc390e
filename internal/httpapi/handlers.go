package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/a3tai/form-filler/internal/form"
	"github.com/a3tai/form-filler/internal/logging"
	"github.com/a3tai/form-filler/internal/notes"
	"github.com/a3tai/form-filler/internal/pdf"
	pdferrors "github.com/a3tai/form-filler/internal/pdf/errors"
)

// FormService is the part of pdf.Service the handlers use.
type FormService interface {
	Generate(ctx context.Context, req pdf.GenerateRequest) (*pdf.GenerateResult, error)
	Normalize(rec form.Record) form.Result
	Plans() []pdf.PlanInfo
}

// Handlers serves the form endpoints.
type Handlers struct {
	service FormService
	started time.Time
	now     func() time.Time
}

// NewHandlers creates handlers backed by service.
func NewHandlers(service FormService) *Handlers {
	return &Handlers{service: service, started: time.Now(), now: time.Now}
}

// Generate fills the template from the submitted fields. With debug set it
// returns the normalized record as JSON instead of a PDF.
func (h *Handlers) Generate(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	rec, err := decodeSubmission(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
			return
		}
		malformed := pdferrors.WrapError(pdferrors.ErrorTypeMalformedInput, err).
			WithContext(describeDecodeError(err))
		logger.Warn("malformed submission, continuing with the fields that parsed",
			zap.String("content_type", r.Header.Get("Content-Type")),
			zap.Int("fields", len(rec)),
			zap.Error(malformed))
	}

	query := r.URL.Query()
	if isTruthy(query.Get("debug")) {
		writeJSON(w, http.StatusOK, h.service.Normalize(rec))
		return
	}

	result, err := h.service.Generate(r.Context(), pdf.GenerateRequest{
		Record: rec,
		Mode:   query.Get("mode"),
	})
	if err != nil {
		logger.Error("generate failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(result.Skipped) > 0 {
		logger.Debug("placements skipped",
			zap.Int("count", len(result.Skipped)),
			zap.String("summary", result.Summary))
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", result.ContentDisposition())
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Data); err != nil {
		logger.Warn("failed to write response", zap.Error(err))
	}
}

// Healthz responds with a simple status payload for readiness checks.
func (h *Handlers) Healthz(w http.ResponseWriter, _ *http.Request) {
	now := h.now()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"uptime":    now.Sub(h.started).Round(time.Second).String(),
		"timestamp": now.UTC().Format(time.RFC3339),
	})
}

// Plans lists the rate plan catalog.
func (h *Handlers) Plans(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"plans": h.service.Plans()})
}

// Notes returns the localized helper notes. lang accepts chip codes and
// language tags; Accept-Language is used when it is absent.
func (h *Handlers) Notes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	langs := []string{query.Get("lang"), r.Header.Get("Accept-Language")}

	kind := strings.TrimSpace(query.Get("kind"))
	if kind == "" {
		writeJSON(w, http.StatusOK, map[string]any{"notes": notes.All(langs...)})
		return
	}

	note, err := notes.Lookup(notes.Kind(kind), langs...)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error()+": "+kind)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
