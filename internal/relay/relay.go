package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/vokinneberg/parcel-assistant/internal/conversation"
	"github.com/vokinneberg/parcel-assistant/internal/metrics"
)

//go:generate mockgen -source=relay.go -destination=mock_relay.go -package=relay

// ConversationService defines the interface for the conversational backend
type ConversationService interface {
	Message(ctx context.Context, req conversation.MessageRequest) (*conversation.MessageResponse, error)
}

// ParcelLocator defines the interface for parcel location lookups
type ParcelLocator interface {
	Locate(ctx context.Context, parcelNum string) (string, error)
}

const (
	// WorkspacePlaceholder is the sample value shipped in configuration templates
	WorkspacePlaceholder = "<workspace-id>"

	// ParcelIntent triggers enrichment of the reply with a parcel location
	ParcelIntent = "parcel"

	// LocationPlaceholder marks where the location goes in the reply text
	LocationPlaceholder = "{0}"

	lookupErrorPrefix = "Parcel lookup service returned an error: "

	notConfiguredText = "The app has not been configured with a <b>WORKSPACE_ID</b> environment variable. " +
		"Please refer to the <a href=\"https://github.com/watson-developer-cloud/conversation-simple\">README</a> " +
		"documentation on how to set this variable. <br>" +
		"Once a workspace has been defined the intents may be imported from " +
		"<a href=\"https://github.com/watson-developer-cloud/conversation-simple/blob/master/training/car_workspace.json\">here</a> " +
		"in order to get a working application."
)

// Payload is a message sent by the client
type Payload struct {
	Context json.RawMessage `json:"context,omitempty"`
	Input   json.RawMessage `json:"input,omitempty"`
}

// Relay forwards client messages to the conversational backend and fills in
// parcel locations for parcel tracking replies
type Relay struct {
	workspaceID  string
	conversation ConversationService
	locator      ParcelLocator
	timeout      time.Duration
}

// NewRelay creates a new message relay. A zero timeout leaves backend calls
// bounded only by the caller's context.
func NewRelay(workspaceID string, backend ConversationService, locator ParcelLocator, timeout time.Duration) (*Relay, error) {
	if backend == nil {
		return nil, errors.New("conversation service is required")
	}
	if locator == nil {
		return nil, errors.New("parcel locator is required")
	}

	return &Relay{
		workspaceID:  strings.TrimSpace(workspaceID),
		conversation: backend,
		locator:      locator,
		timeout:      timeout,
	}, nil
}

// Configured reports whether a real workspace id is set
func (r *Relay) Configured() bool {
	return r.workspaceID != "" && r.workspaceID != WorkspacePlaceholder
}

// Handle relays one message. Backend failures are returned as errors;
// parcel lookup failures are reported in the reply text instead.
func (r *Relay) Handle(ctx context.Context, payload Payload) (*conversation.MessageResponse, error) {
	if !r.Configured() {
		metrics.BackendCalls.WithLabelValues("skipped").Inc()
		return NotConfiguredResponse()
	}

	req := conversation.MessageRequest{
		WorkspaceID: r.workspaceID,
		Context:     orEmptyObject(payload.Context),
		Input:       orEmptyObject(payload.Input),
	}

	data, err := r.message(ctx, req)
	if err != nil {
		metrics.BackendCalls.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.BackendCalls.WithLabelValues("ok").Inc()

	parcelNum, ok := parcelNumber(data)
	if data.TopIntent() != ParcelIntent || !ok {
		return data, nil
	}

	if err := r.enrich(ctx, data, parcelNum); err != nil {
		return nil, err
	}
	return data, nil
}

func (r *Relay) message(ctx context.Context, req conversation.MessageRequest) (*conversation.MessageResponse, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	data, err := r.conversation.Message(ctx, req)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, errors.New("conversation service returned no response")
	}
	return data, nil
}

func (r *Relay) enrich(ctx context.Context, data *conversation.MessageResponse, parcelNum string) error {
	location, err := r.locator.Locate(ctx, parcelNum)
	if err != nil {
		slog.Warn("Parcel lookup failed", "parcel_num", parcelNum, "error", err)
		metrics.Enrichments.WithLabelValues("failed").Inc()
		if setErr := data.SetText(0, lookupErrorPrefix+err.Error()); setErr != nil {
			return fmt.Errorf("failed to report parcel lookup error: %w", setErr)
		}
		return nil
	}

	metrics.Enrichments.WithLabelValues("located").Inc()

	text, ok := data.Text(0)
	if !ok {
		return nil
	}
	if err := data.SetText(0, strings.ReplaceAll(text, LocationPlaceholder, location)); err != nil {
		return fmt.Errorf("failed to fill in parcel location: %w", err)
	}
	return nil
}

// NotConfiguredResponse is the reply sent while no workspace id is configured
func NotConfiguredResponse() (*conversation.MessageResponse, error) {
	raw, err := json.Marshal(map[string]any{
		"output": map[string]any{"text": notConfiguredText},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal guidance message: %w", err)
	}
	return conversation.NewMessageResponse(raw)
}

// parcelNumber returns context.parcel_num as a string when it is set to
// anything other than null, false, 0 or an empty string
func parcelNumber(data *conversation.MessageResponse) (string, bool) {
	v := data.ContextValue("parcel_num")
	switch v.Type {
	case gjson.Null, gjson.False:
		return "", false
	case gjson.Number:
		if v.Num == 0 {
			return "", false
		}
	case gjson.String:
		if v.Str == "" {
			return "", false
		}
	}
	return v.String(), true
}

func orEmptyObject(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return json.RawMessage(`{}`)
	}
	return trimmed
}
