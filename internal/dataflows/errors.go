package dataflows

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const MalformedMessage = "malformed response"

// APIError is a response the service produced but that does not carry a
// usable result: a non-2xx status, a success flag that is false or missing,
// or a body that cannot be decoded.
type APIError struct {
	StatusCode int
	// Detail is the message resolved from the body; empty when none was found.
	Detail    string
	Malformed bool
	Body      []byte
}

func (e *APIError) Error() string {
	switch {
	case e.Malformed:
		return fmt.Sprintf("status %d: %s", e.StatusCode, MalformedMessage)
	case e.Detail != "":
		return fmt.Sprintf("status %d: %s", e.StatusCode, e.Detail)
	default:
		return fmt.Sprintf("status %d", e.StatusCode)
	}
}

// DetailOr returns the resolved message, or fallback when there is none.
// Undecodable bodies always read "malformed response".
func (e *APIError) DetailOr(fallback string) string {
	if e.Malformed {
		return MalformedMessage
	}
	if e.Detail != "" {
		return e.Detail
	}
	return fallback
}

// NetworkMessage is the user-facing text for a request that never got a
// response from the service at baseURL.
func NetworkMessage(err error, baseURL string) string {
	cause := err
	var tErr *TransportError
	if errors.As(err, &tErr) {
		cause = tErr.Err
	}
	return fmt.Sprintf("Network error: %v\n\nMake sure:\n1. Backend server is running\n2. API is available at %s", cause, baseURL)
}

// TransportError means no response was received at all.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s request: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func newAPIError(status int, body []byte) *APIError {
	return &APIError{StatusCode: status, Detail: ResolveMessage(body), Body: body}
}

type envelope struct {
	Success *bool `json:"success"`
}

// checkEnvelope fails any response that is not 2xx with success:true.
func checkEnvelope(status int, body []byte) error {
	if !isSuccess(status) {
		return newAPIError(status, body)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &APIError{StatusCode: status, Malformed: true, Body: body}
	}
	if env.Success == nil || !*env.Success {
		return newAPIError(status, body)
	}
	return nil
}

// ResolveMessage extracts a human readable message from an error body. The
// first non-empty source wins:
//
//  1. "detail" as a string
//  2. "msg" of each entry of a "detail" list (FastAPI validation errors)
//  3. "error" as a string
//  4. the <title> of a body that is not JSON
//
// It returns "" when nothing matches.
func ResolveMessage(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		if json.Valid(trimmed) {
			return ""
		}
		return htmlTitle(trimmed)
	}

	if msg := stringField(fields["detail"]); msg != "" {
		return msg
	}
	if msg := validationMessages(fields["detail"]); msg != "" {
		return msg
	}
	return stringField(fields["error"])
}

func stringField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func validationMessages(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return ""
	}

	msgs := make([]string, 0, len(entries))
	for _, entry := range entries {
		if msg := stringField(entry["msg"]); msg != "" {
			msgs = append(msgs, msg)
		}
	}
	return strings.Join(msgs, "; ")
}

func htmlTitle(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
