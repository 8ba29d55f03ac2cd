package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vokinneberg/parcel-assistant/internal/conversation"
	"github.com/vokinneberg/parcel-assistant/internal/parcel"
	"github.com/vokinneberg/parcel-assistant/internal/relay"
	"github.com/vokinneberg/parcel-assistant/internal/types"
)

//go:generate mockgen -source=handlers.go -destination=mock_handlers.go -package=http

// MessageRelay defines the interface for relaying chat messages
type MessageRelay interface {
	Handle(ctx context.Context, payload relay.Payload) (*conversation.MessageResponse, error)
}

// ParcelLocator defines the interface for parcel location lookups
type ParcelLocator interface {
	Locate(ctx context.Context, parcelNum string) (string, error)
}

const maxBodyBytes = 1 << 20

type Handler struct {
	relay   MessageRelay
	locator ParcelLocator
}

// NewHandlers initializes handlers with dependencies
func NewHandlers(messageRelay MessageRelay, locator ParcelLocator) *Handler {
	return &Handler{
		relay:   messageRelay,
		locator: locator,
	}
}

func (h *Handler) MessageHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload relay.Payload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		errorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	data, err := h.relay.Handle(r.Context(), payload)
	if err != nil {
		var backendErr *conversation.BackendError
		if errors.As(err, &backendErr) {
			slog.Error("Conversation service returned an error", "status", backendErr.Status(), "error", err)
			writeRawJSON(w, backendErr.Status(), backendErr.JSON())
			return
		}
		slog.Error("Error relaying message", "error", err)
		errorResponse(w, http.StatusInternalServerError, "Failed to relay message", err)
		return
	}

	writeRawJSON(w, http.StatusOK, data.Bytes())
}

func (h *Handler) ParcelHandler(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("parcel_num")

	location, err := h.locator.Locate(r.Context(), raw)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, parcel.ErrInvalidNumber):
			status = http.StatusBadRequest
		case errors.Is(err, parcel.ErrNotFound):
			status = http.StatusNotFound
		default:
			slog.Error("Error locating parcel", "error", err, "parcel_num", raw)
		}
		textResponse(w, status, err.Error())
		return
	}

	textResponse(w, http.StatusOK, location)
}

// HealthHandler reports that the process is serving
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.HealthResponse{Status: "ok"})
}

func textResponse(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := io.WriteString(w, body); err != nil {
		slog.Error("Error writing response", "error", err)
	}
}

func writeRawJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		slog.Error("Error writing response", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

func errorResponse(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	errorMsg := message
	if err != nil {
		errorMsg = fmt.Sprintf("%s: %v", message, err)
	}

	if err := json.NewEncoder(w).Encode(types.ErrorResponse{
		Error:   http.StatusText(status),
		Message: errorMsg,
	}); err != nil {
		slog.Error("Error encoding error response", "error", err, "status", status)
	}
}
