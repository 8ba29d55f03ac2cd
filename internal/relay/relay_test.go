package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/vokinneberg/parcel-assistant/internal/conversation"
	"github.com/vokinneberg/parcel-assistant/internal/parcel"
)

func mustResponse(t *testing.T, raw string) *conversation.MessageResponse {
	t.Helper()
	resp, err := conversation.NewMessageResponse([]byte(raw))
	if err != nil {
		t.Fatalf("NewMessageResponse() unexpected error: %v", err)
	}
	return resp
}

func TestNewRelay(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	if _, err := NewRelay("ws", nil, NewMockParcelLocator(ctrl), 0); err == nil {
		t.Error("NewRelay() expected error for nil conversation service")
	}
	if _, err := NewRelay("ws", NewMockConversationService(ctrl), nil, 0); err == nil {
		t.Error("NewRelay() expected error for nil parcel locator")
	}
	if _, err := NewRelay("ws", NewMockConversationService(ctrl), NewMockParcelLocator(ctrl), time.Second); err != nil {
		t.Errorf("NewRelay() unexpected error: %v", err)
	}
}

func TestRelay_Handle(t *testing.T) {
	tests := []struct {
		name        string
		workspaceID string
		payload     Payload
		setupMocks  func(*testing.T, *MockConversationService, *MockParcelLocator)
		wantErr     bool
		wantStatus  int
		wantText    string
		wantBody    string
	}{
		{
			name:        "missing workspace returns guidance",
			workspaceID: "",
			setupMocks:  func(*testing.T, *MockConversationService, *MockParcelLocator) {},
			wantText:    "",
			wantBody:    "WORKSPACE_ID",
		},
		{
			name:        "placeholder workspace returns guidance",
			workspaceID: WorkspacePlaceholder,
			setupMocks:  func(*testing.T, *MockConversationService, *MockParcelLocator) {},
			wantBody:    "WORKSPACE_ID",
		},
		{
			name:        "other intent passes through",
			workspaceID: "ws-1",
			payload: Payload{
				Context: json.RawMessage(`{"conversation_id":"c1"}`),
				Input:   json.RawMessage(`{"text":"hello"}`),
			},
			setupMocks: func(t *testing.T, conv *MockConversationService, loc *MockParcelLocator) {
				conv.EXPECT().
					Message(gomock.Any(), conversation.MessageRequest{
						WorkspaceID: "ws-1",
						Context:     json.RawMessage(`{"conversation_id":"c1"}`),
						Input:       json.RawMessage(`{"text":"hello"}`),
					}).
					Return(mustResponse(t, `{"intents":[{"intent":"greeting","confidence":0.9}],"output":{"text":["Hi {0}"]},"context":{"parcel_num":14}}`), nil)
			},
			wantText: "Hi {0}",
		},
		{
			name:        "parcel intent is enriched",
			workspaceID: "ws-1",
			payload:     Payload{Input: json.RawMessage(`{"text":"where is parcel 14"}`)},
			setupMocks: func(t *testing.T, conv *MockConversationService, loc *MockParcelLocator) {
				conv.EXPECT().
					Message(gomock.Any(), gomock.Any()).
					Return(mustResponse(t, `{"intents":[{"intent":"parcel","confidence":0.97}],"output":{"text":["Parcel is at {0}. I said {0}!","Bye"]},"context":{"parcel_num":14,"conversation_id":"c1"}}`), nil)
				loc.EXPECT().Locate(gomock.Any(), "14").Return("Hatfield, UK", nil).Times(1)
			},
			wantText: "Parcel is at Hatfield, UK. I said Hatfield, UK!",
			wantBody: `"Bye"`,
		},
		{
			name:        "parcel number as string",
			workspaceID: "ws-1",
			setupMocks: func(t *testing.T, conv *MockConversationService, loc *MockParcelLocator) {
				conv.EXPECT().
					Message(gomock.Any(), gomock.Any()).
					Return(mustResponse(t, `{"intents":[{"intent":"parcel"}],"output":{"text":["At {0}"]},"context":{"parcel_num":"27"}}`), nil)
				loc.EXPECT().Locate(gomock.Any(), "27").Return("Buckingham Palace", nil)
			},
			wantText: "At Buckingham Palace",
		},
		{
			name:        "parcel intent without parcel number",
			workspaceID: "ws-1",
			setupMocks: func(t *testing.T, conv *MockConversationService, loc *MockParcelLocator) {
				conv.EXPECT().
					Message(gomock.Any(), gomock.Any()).
					Return(mustResponse(t, `{"intents":[{"intent":"parcel"}],"output":{"text":["Which parcel?"]},"context":{}}`), nil)
			},
			wantText: "Which parcel?",
		},
		{
			name:        "parcel number zero is not looked up",
			workspaceID: "ws-1",
			setupMocks: func(t *testing.T, conv *MockConversationService, loc *MockParcelLocator) {
				conv.EXPECT().
					Message(gomock.Any(), gomock.Any()).
					Return(mustResponse(t, `{"intents":[{"intent":"parcel"}],"output":{"text":["At {0}"]},"context":{"parcel_num":0}}`), nil)
			},
			wantText: "At {0}",
		},
		{
			name:        "lookup failure is reported in text",
			workspaceID: "ws-1",
			setupMocks: func(t *testing.T, conv *MockConversationService, loc *MockParcelLocator) {
				conv.EXPECT().
					Message(gomock.Any(), gomock.Any()).
					Return(mustResponse(t, `{"intents":[{"intent":"parcel"}],"output":{"text":["At {0}"]},"context":{"parcel_num":13}}`), nil)
				loc.EXPECT().
					Locate(gomock.Any(), "13").
					Return("", errors.New("We can't find parcel number 13 it is unlucky!"))
			},
			wantText: "Parcel lookup service returned an error: We can't find parcel number 13 it is unlucky!",
		},
		{
			name:        "backend error is returned without enrichment",
			workspaceID: "ws-1",
			setupMocks: func(t *testing.T, conv *MockConversationService, loc *MockParcelLocator) {
				conv.EXPECT().
					Message(gomock.Any(), gomock.Any()).
					Return(nil, &conversation.BackendError{
						StatusCode: http.StatusServiceUnavailable,
						Body:       []byte(`{"error":"Service Unavailable","code":503}`),
					})
			},
			wantErr:    true,
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:        "nil response is an error",
			workspaceID: "ws-1",
			setupMocks: func(t *testing.T, conv *MockConversationService, loc *MockParcelLocator) {
				conv.EXPECT().Message(gomock.Any(), gomock.Any()).Return(nil, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockConv := NewMockConversationService(ctrl)
			mockLoc := NewMockParcelLocator(ctrl)
			tt.setupMocks(t, mockConv, mockLoc)

			r, err := NewRelay(tt.workspaceID, mockConv, mockLoc, time.Second)
			if err != nil {
				t.Fatalf("NewRelay() unexpected error: %v", err)
			}

			resp, err := r.Handle(context.Background(), tt.payload)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Handle() expected error but got nil")
				}
				if tt.wantStatus != 0 {
					var backendErr *conversation.BackendError
					if !errors.As(err, &backendErr) {
						t.Fatalf("Handle() error = %v, want *conversation.BackendError", err)
					}
					if backendErr.Status() != tt.wantStatus {
						t.Errorf("Handle() status = %d, want %d", backendErr.Status(), tt.wantStatus)
					}
				}
				return
			}
			if err != nil {
				t.Fatalf("Handle() unexpected error: %v", err)
			}

			if tt.wantText != "" {
				got, ok := resp.Text(0)
				if !ok {
					t.Fatalf("Handle() response has no output.text[0]: %s", resp.Bytes())
				}
				if got != tt.wantText {
					t.Errorf("Handle() text = %q, want %q", got, tt.wantText)
				}
			}

			if tt.wantBody != "" && !strings.Contains(string(resp.Bytes()), tt.wantBody) {
				t.Errorf("Handle() body = %s, want containing %q", resp.Bytes(), tt.wantBody)
			}
		})
	}
}

func TestRelay_HandleDefaultsContextAndInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockConv := NewMockConversationService(ctrl)
	mockConv.EXPECT().
		Message(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req conversation.MessageRequest) (*conversation.MessageResponse, error) {
			if string(req.Context) != "{}" {
				t.Errorf("Message() context = %s, want {}", req.Context)
			}
			if string(req.Input) != "{}" {
				t.Errorf("Message() input = %s, want {}", req.Input)
			}
			if _, ok := ctx.Deadline(); !ok {
				t.Error("Message() context has no deadline")
			}
			return mustResponse(t, `{"output":{"text":["Welcome"]},"context":{"conversation_id":"c1"}}`), nil
		})

	r, err := NewRelay("ws-1", mockConv, NewMockParcelLocator(ctrl), time.Second)
	if err != nil {
		t.Fatalf("NewRelay() unexpected error: %v", err)
	}

	payload := Payload{Context: json.RawMessage("null")}
	if _, err := r.Handle(context.Background(), payload); err != nil {
		t.Fatalf("Handle() unexpected error: %v", err)
	}
}

func TestRelay_HandleWithParcelLocator(t *testing.T) {
	tests := []struct {
		name      string
		parcelNum string
		wantText  string
	}{
		{name: "located", parcelNum: "14", wantText: "Your parcel is in Hatfield, UK"},
		{name: "unlucky", parcelNum: "26", wantText: "Parcel lookup service returned an error: We can't find parcel number 26 it is unlucky!"},
		{name: "fractional number", parcelNum: "14.5", wantText: "Your parcel is in Hatfield, UK"},
		{name: "invalid", parcelNum: `"abc"`, wantText: "Parcel lookup service returned an error: Not a valid parcel number abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockConv := NewMockConversationService(ctrl)
			mockConv.EXPECT().
				Message(gomock.Any(), gomock.Any()).
				Return(mustResponse(t, `{"intents":[{"intent":"parcel"}],"output":{"text":["Your parcel is in {0}"]},"context":{"parcel_num":`+tt.parcelNum+`}}`), nil)

			r, err := NewRelay("ws-1", mockConv, parcel.NewLocator(), 0)
			if err != nil {
				t.Fatalf("NewRelay() unexpected error: %v", err)
			}

			resp, err := r.Handle(context.Background(), Payload{})
			if err != nil {
				t.Fatalf("Handle() unexpected error: %v", err)
			}

			got, _ := resp.Text(0)
			if got != tt.wantText {
				t.Errorf("Handle() text = %q, want %q", got, tt.wantText)
			}
		})
	}
}

func TestNotConfiguredResponse(t *testing.T) {
	resp, err := NotConfiguredResponse()
	if err != nil {
		t.Fatalf("NotConfiguredResponse() unexpected error: %v", err)
	}

	var decoded struct {
		Output struct {
			Text string `json:"text"`
		} `json:"output"`
	}
	if err := json.Unmarshal(resp.Bytes(), &decoded); err != nil {
		t.Fatalf("NotConfiguredResponse() invalid JSON: %v", err)
	}
	if !strings.Contains(decoded.Output.Text, "<b>WORKSPACE_ID</b>") {
		t.Errorf("NotConfiguredResponse() text = %q, want mention of WORKSPACE_ID", decoded.Output.Text)
	}
}
