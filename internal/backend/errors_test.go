package backend

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestServiceMessage(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{
			name:     "fastapi detail string",
			body:     `{"detail": "Invalid image file"}`,
			expected: "Invalid image file",
		},
		{
			name:     "error key",
			body:     `{"error": "clustering failed"}`,
			expected: "clustering failed",
		},
		{
			name:     "detail wins over error",
			body:     `{"detail": "primary", "error": "secondary"}`,
			expected: "primary",
		},
		{
			name:     "structured validation detail",
			body:     `{"detail": [{"loc": ["body", "bed_data"], "msg": "field required"}]}`,
			expected: `[{"loc": ["body", "bed_data"], "msg": "field required"}]`,
		},
		{
			name:     "null detail falls through to error",
			body:     `{"detail": null, "error": "boom"}`,
			expected: "boom",
		},
		{
			name:     "plain text body",
			body:     "Bad Gateway",
			expected: "Bad Gateway",
		},
		{
			name:     "empty body",
			body:     "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := serviceMessage([]byte(tt.body)); got != tt.expected {
				t.Errorf("serviceMessage(%q) = %q, want %q", tt.body, got, tt.expected)
			}
		})
	}
}

func TestNetworkErrorTimeoutFlag(t *testing.T) {
	err := networkError(ServiceClustering, "process-clustering",
		fmt.Errorf("do request: %w", context.DeadlineExceeded), 30*time.Second)
	if !err.Timeout {
		t.Error("deadline expiry not flagged as timeout")
	}
	if !IsTimeout(err) {
		t.Error("IsTimeout = false for a timeout CallError")
	}
	if got := err.Message; got != "clustering service timed out after 30s" {
		t.Errorf("Message = %q", got)
	}
}

func TestNetworkErrorConnectionFailure(t *testing.T) {
	err := networkError(ServiceProcessing, "upload-image", errors.New("dial tcp: connection refused"), 30*time.Second)
	if err.Timeout {
		t.Error("connection failure wrongly flagged as timeout")
	}
	if !IsNetworkError(err) {
		t.Error("IsNetworkError = false")
	}
}

func TestCallErrorUnwrapThroughWrapping(t *testing.T) {
	inner := serviceError(ServiceExport, "export-dxf", 503, []byte(`{"detail": "down"}`))
	wrapped := fmt.Errorf("export failed: %w", inner)

	if !IsServiceError(wrapped) {
		t.Error("IsServiceError lost through fmt.Errorf wrapping")
	}
	ce, ok := AsCallError(wrapped)
	if !ok {
		t.Fatal("AsCallError failed on wrapped error")
	}
	if ce.Status != 503 || ce.Message != "down" {
		t.Errorf("unexpected fields: %+v", ce)
	}
}

func TestCallErrorTypeString(t *testing.T) {
	tests := []struct {
		errType  CallErrorType
		expected string
	}{
		{ErrTypeNetwork, "network"},
		{ErrTypeService, "service"},
		{ErrTypeMalformed, "malformed"},
		{CallErrorType(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.errType.String(); got != tt.expected {
			t.Errorf("String(%d) = %q, want %q", tt.errType, got, tt.expected)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		limit    int
		expected string
	}{
		{"short", 10, "short"},
		{"this is a long string", 10, "this is a ..."},
		{"exact", 5, "exact"},
	}
	for _, tt := range tests {
		got := truncate(tt.input, tt.limit)
		if got != tt.expected {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.limit, got, tt.expected)
		}
	}
}
