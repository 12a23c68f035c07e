package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorIs(t *testing.T) {
	err := NotFound("Task not found")

	if !errors.Is(err, ErrNotFound) {
		t.Error("expected NotFound error to match ErrNotFound")
	}
	if errors.Is(err, ErrForbidden) {
		t.Error("NotFound error should not match ErrForbidden")
	}

	wrapped := fmt.Errorf("loading: %w", err)
	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("expected wrapped error to match ErrNotFound")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"typed", Forbidden("no"), KindForbidden},
		{"wrapped", fmt.Errorf("x: %w", InvalidInput("bad")), KindInvalidInput},
		{"plain", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindNotFound, http.StatusNotFound},
		{KindForbidden, http.StatusForbidden},
		{KindUnauthenticated, http.StatusUnauthorized},
		{KindInvalidInput, http.StatusBadRequest},
		{KindConflict, http.StatusBadRequest},
		{KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := HTTPStatus(tt.kind); got != tt.want {
			t.Errorf("HTTPStatus(%q) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestErrorSurvivesJSON(t *testing.T) {
	data, err := json.Marshal(Forbidden("Only the task creator can delete this task"))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded Error
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !errors.Is(&decoded, ErrForbidden) {
		t.Errorf("decoded kind = %q, want forbidden", decoded.Kind)
	}
	if decoded.Message != "Only the task creator can delete this task" {
		t.Errorf("decoded message = %q", decoded.Message)
	}
}

func TestFrom(t *testing.T) {
	if From(nil) != nil {
		t.Error("From(nil) should be nil")
	}
	if got := From(errors.New("db down")); got.Kind != KindInternal {
		t.Errorf("From(plain).Kind = %q, want internal", got.Kind)
	}
	orig := Conflict("dup")
	if got := From(fmt.Errorf("wrap: %w", orig)); got != orig {
		t.Error("From should unwrap to the original *Error")
	}
}
