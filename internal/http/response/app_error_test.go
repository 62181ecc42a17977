package response

import (
	"errors"
	"testing"
)

func TestAppErrorMessage(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	appErr := WrapError(CodeInternal, "lookup failed", cause)

	if appErr.Error() != "lookup failed: dial tcp: connection refused" {
		t.Fatalf("unexpected error string: %q", appErr.Error())
	}
	if !errors.Is(appErr, cause) {
		t.Fatalf("wrapped cause must be reachable via errors.Is")
	}

	bare := WrapError(CodeBadRequest, "invalid request body", nil)
	if bare.Error() != "invalid request body" {
		t.Fatalf("unexpected error string without cause: %q", bare.Error())
	}
}

func TestAppErrorLogFields(t *testing.T) {
	cause := errors.New("boom")
	fields := WrapError(CodeInternal, "lookup failed", cause).LogFields()
	if len(fields) != 6 {
		t.Fatalf("expected code/message/error pairs, got %v", fields)
	}
	if fields[0] != "code" || fields[1] != CodeInternal {
		t.Fatalf("unexpected code field: %v", fields[:2])
	}
	if fields[4] != "error" || fields[5] != cause {
		t.Fatalf("unexpected error field: %v", fields[4:])
	}

	fields = WrapError(CodeBadRequest, "invalid request body", nil).LogFields()
	if len(fields) != 4 {
		t.Fatalf("nil cause must not add an error field, got %v", fields)
	}
}
