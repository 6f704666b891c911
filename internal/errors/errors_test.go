package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsMatchesByCode(t *testing.T) {
	t.Parallel()

	base := New(CodeNotFound, "record not found")
	wrapped := fmt.Errorf("load record: %w", base)
	if !errors.Is(wrapped, New(CodeNotFound, "different message")) {
		t.Fatal("expected code match through wrapping")
	}
	if errors.Is(wrapped, New(CodeConflict, "record not found")) {
		t.Fatal("expected code mismatch to not match")
	}
}

func TestUnwrapExposesCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk full")
	err := Wrap(CodeUnknown, "write record", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to be reachable via errors.Is")
	}
	if err.Error() != "write record" {
		t.Fatalf("message = %q, want write record", err.Error())
	}
}

func TestWithMetadataCarriesContext(t *testing.T) {
	t.Parallel()

	err := WithMetadata(CodePermissionDenied, "permission denied", map[string]string{"Reason": "NOT_OWNER"})
	var domainErr *Error
	if !errors.As(err, &domainErr) {
		t.Fatal("expected *Error via errors.As")
	}
	if domainErr.Metadata["Reason"] != "NOT_OWNER" {
		t.Fatalf("metadata = %v", domainErr.Metadata)
	}
}
