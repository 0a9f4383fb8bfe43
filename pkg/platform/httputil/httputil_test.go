package httputil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	dErrors "payout/pkg/domain-errors"
	"payout/pkg/testutil"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "internal_error" {
			t.Fatalf("expected error code internal_error, got %q", body["error"])
		}
		if _, ok := body["error_description"]; ok {
			t.Fatalf("expected error_description to be omitted for internal errors")
		}
	})

	t.Run("bad request includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid input"))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "bad_request" {
			t.Fatalf("expected error code bad_request, got %q", body["error"])
		}
		if body["error_description"] != "invalid input" {
			t.Fatalf("expected error_description to be returned for bad request")
		}
	})
}

func TestWriteError_DomainReasons(t *testing.T) {
	t.Run("forbidden reason is passed through verbatim", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeForbidden, "not funder"))

		if w.Code != http.StatusForbidden {
			t.Fatalf("expected status %d, got %d", http.StatusForbidden, w.Code)
		}
		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error_description"] != "not funder" {
			t.Fatalf("expected reason to be returned, got %q", body["error_description"])
		}
	})

	t.Run("policy violations map to unprocessable entity", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, fmt.Errorf("request: %w", dErrors.New(dErrors.CodePolicyViolation, "must wait to withdraw")))

		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, w.Code)
		}
	})

	t.Run("uncoded errors are internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("boom"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}
	})
}

func TestWriteFailure_LogLevelFollowsStatus(t *testing.T) {
	cases := []struct {
		name  string
		err   error
		level string
	}{
		{"client error logs at warn", dErrors.New(dErrors.CodeConflict, "already provided"), "WARN"},
		{"server error logs at error", errors.New("boom"), "ERROR"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))
			req := testutil.WithRequestID(httptest.NewRequest(http.MethodPost, "/withdrawals/1", nil), "req-42")
			w := httptest.NewRecorder()

			WriteFailure(w, req, logger, "submission failed", tc.err)

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("decode log entry: %v", err)
			}
			if entry["level"] != tc.level {
				t.Fatalf("expected level %s, got %v", tc.level, entry["level"])
			}
			if entry["request_id"] != "req-42" {
				t.Fatalf("expected request_id req-42, got %v", entry["request_id"])
			}
			if int(entry["status"].(float64)) != w.Code {
				t.Fatalf("logged status %v does not match response %d", entry["status"], w.Code)
			}
		})
	}
}
