package errors

import (
	"fmt"
	"testing"
)

func TestError(t *testing.T) {
	// Test basic error creation
	err := New(ErrCodeFetchFailed, "fetch failed")
	if err.Code != ErrCodeFetchFailed {
		t.Errorf("expected code %s, got %s", ErrCodeFetchFailed, err.Code)
	}

	// Test error wrapping
	cause := fmt.Errorf("underlying error")
	wrapped := Wrap(cause, ErrCodeDecodeFailed, "decode failed")

	if wrapped.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}

	// Test Is function
	if !Is(wrapped, ErrCodeDecodeFailed) {
		t.Error("Is should return true for matching code")
	}

	if Is(wrapped, ErrCodeFetchFailed) {
		t.Error("Is should return false for non-matching code")
	}

	// Is looks through fmt.Errorf wrapping
	outer := fmt.Errorf("refresh: %w", wrapped)
	if !Is(outer, ErrCodeDecodeFailed) {
		t.Error("Is should unwrap standard wrapped errors")
	}
	if GetCode(outer) != ErrCodeDecodeFailed {
		t.Errorf("GetCode = %s, want %s", GetCode(outer), ErrCodeDecodeFailed)
	}

	// Test WithDetail
	detailed := err.WithDetail("document", "view.json").WithDetail("status", 500)
	if detailed.Details["document"] != "view.json" {
		t.Error("WithDetail should add details")
	}
}

func TestErrorConstructors(t *testing.T) {
	err := FetchFailed("view.json", 404, nil)
	if err.Code != ErrCodeFetchFailed {
		t.Errorf("expected code %s, got %s", ErrCodeFetchFailed, err.Code)
	}
	if err.Details["status"] != 404 {
		t.Error("FetchFailed should include status detail")
	}

	err = FetchFailed("pick.json", 0, fmt.Errorf("connection refused"))
	if _, ok := err.Details["status"]; ok {
		t.Error("FetchFailed without a status should not record one")
	}
	if err.Cause == nil {
		t.Error("FetchFailed should keep the cause")
	}

	err = UnknownDirective("bogus")
	if err.Details["verb"] != "bogus" {
		t.Error("UnknownDirective should include verb detail")
	}

	err = InvalidRow(3, "index out of range")
	if err.Code != ErrCodeInvalidRow || err.Details["row"] != 3 {
		t.Errorf("unexpected InvalidRow error: %v", err)
	}

	// Nested cause codes are visible to Is
	closed := TransportClosed(nil)
	wrapped := Wrap(closed, ErrCodeInternal, "send failed")
	if !Is(wrapped, ErrCodeTransportClosed) {
		t.Error("Is should find a code in the cause chain")
	}
}
