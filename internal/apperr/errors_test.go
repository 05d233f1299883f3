package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{
			name: "validation",
			err:  Validation("bad input"),
			want: KindValidation,
		},
		{
			name: "not found",
			err:  NotFound("company not found", uuid.New()),
			want: KindNotFound,
		},
		{
			name: "conflict",
			err:  Conflict("duplicate URL", "careersUrl"),
			want: KindConflict,
		},
		{
			name: "persistence",
			err:  Persistence(errors.New("connection refused")),
			want: KindPersistence,
		},
		{
			name: "wrapped domain error",
			err:  fmt.Errorf("listing companies: %w", Validation("bad page")),
			want: KindValidation,
		},
		{
			name: "plain error defaults to persistence",
			err:  errors.New("something broke"),
			want: KindPersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("Expected kind %v, got %v", tt.want, got)
			}
		})
	}
}

func TestFrom(t *testing.T) {
	t.Parallel()

	if From(errors.New("plain")) != nil {
		t.Error("Expected nil for a non-domain error")
	}

	wrapped := fmt.Errorf("outer: %w", Conflict("duplicate", "careersUrl"))
	e := From(wrapped)
	if e == nil {
		t.Fatal("Expected domain error to be extracted from wrap chain")
	}
	if e.Field != "careersUrl" {
		t.Errorf("Expected field 'careersUrl', got %q", e.Field)
	}
}

func TestPersistenceHidesDetail(t *testing.T) {
	t.Parallel()

	cause := errors.New("pq: relation \"companies\" does not exist")
	err := Persistence(cause)

	if err.Message != "An unexpected error occurred" {
		t.Errorf("Expected generic client message, got %q", err.Message)
	}
	if !errors.Is(err, cause) {
		t.Error("Expected wrapped cause to survive for logging")
	}
}

func TestErrorString(t *testing.T) {
	t.Parallel()

	plain := Validation("bad input")
	if plain.Error() != "validation: bad input" {
		t.Errorf("Unexpected error string: %q", plain.Error())
	}

	wrapped := Persistence(errors.New("boom"))
	if wrapped.Error() != "persistence: An unexpected error occurred: boom" {
		t.Errorf("Unexpected error string: %q", wrapped.Error())
	}
}
