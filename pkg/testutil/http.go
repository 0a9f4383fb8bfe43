// Package testutil provides common test utilities for handler, service and
// integration tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// Response is a recorded handler response with its body decoded when it is
// a JSON object.
type Response struct {
	Code int
	Body string
	JSON map[string]any
}

// NewJSONRequest creates an HTTP request with body marshaled to JSON. A nil
// body sends no payload.
func NewJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// Do executes req against handler.
func Do(t *testing.T, handler http.Handler, req *http.Request) *Response {
	t.Helper()
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	resp := &Response{Code: rr.Code, Body: rr.Body.String()}
	if bytes.HasPrefix(bytes.TrimSpace(rr.Body.Bytes()), []byte("{")) {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp.JSON), "response is not valid JSON: %s", resp.Body)
	}
	return resp
}

// DecodeJSON unmarshals the response body into T.
func DecodeJSON[T any](t *testing.T, resp *Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &out), "failed to unmarshal response: %s", resp.Body)
	return out
}
