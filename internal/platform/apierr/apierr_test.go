package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOfThroughWrapping(t *testing.T) {
	base := Conflict("cell_exists", errors.New("duplicate cell"))
	wrapped := fmt.Errorf("upsert: %w", base)

	if got := KindOf(wrapped); got != KindConflict {
		t.Fatalf("KindOf: want=%s got=%s", KindConflict, got)
	}
	if !IsKind(wrapped, KindConflict) {
		t.Fatalf("IsKind: expected conflict")
	}
	if IsKind(nil, KindConflict) {
		t.Fatalf("IsKind(nil): expected false")
	}
	var e *Error
	if !errors.As(wrapped, &e) || e.Status != http.StatusConflict || e.Code != "cell_exists" {
		t.Fatalf("unexpected error payload: %+v", e)
	}
}

func TestKindOfLegacyStatus(t *testing.T) {
	err := New(http.StatusForbidden, "nope", nil)
	if got := KindOf(err); got != KindForbidden {
		t.Fatalf("KindOf: want=%s got=%s", KindForbidden, got)
	}
	if got := KindOf(errors.New("plain")); got != KindUnknown {
		t.Fatalf("KindOf(plain): want=%s got=%s", KindUnknown, got)
	}
}

func TestDefaultCode(t *testing.T) {
	err := NotFound("", errors.New("sheet not found"))
	if err.Code != "not_found" {
		t.Fatalf("code: want=not_found got=%s", err.Code)
	}
	if err.Error() != "sheet not found" {
		t.Fatalf("message: got=%q", err.Error())
	}
}
