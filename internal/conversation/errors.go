package conversation

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// BackendError is a failed call to a conversational backend. It carries the
// status and body the backend reported so they can be passed on to the client.
type BackendError struct {
	StatusCode int
	Body       []byte
	Err        error
}

func (e *BackendError) Error() string {
	if e == nil {
		return ""
	}
	if e.StatusCode == 0 && e.Err != nil {
		return "conversation: backend unavailable: " + e.Err.Error()
	}
	msg := strings.TrimSpace(string(e.Body))
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("conversation: backend returned status %d: %s", e.Status(), msg)
}

func (e *BackendError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Status returns the reported status code, or 500 when the backend gave none
func (e *BackendError) Status() int {
	if e.StatusCode < 400 || e.StatusCode > 599 {
		return http.StatusInternalServerError
	}
	return e.StatusCode
}

// JSON returns the backend's error body when it is valid JSON, otherwise an
// {"error", "code"} object describing the failure.
func (e *BackendError) JSON() []byte {
	body := []byte(strings.TrimSpace(string(e.Body)))
	if len(body) > 0 && json.Valid(body) {
		return body
	}

	msg := string(body)
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = http.StatusText(e.Status())
	}

	out, _ := json.Marshal(struct {
		Error string `json:"error"`
		Code  int    `json:"code"`
	}{Error: msg, Code: e.Status()})
	return out
}
