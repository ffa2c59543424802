package http

import (
	"errors"
	"strings"
	"testing"
)

func TestBusinessUnitValidation(t *testing.T) {
	type P struct {
		Unit string `validate:"bunit"`
	}
	cv := NewValidator()

	if err := cv.Validate(P{Unit: "Food Services"}); err != nil {
		t.Fatalf("expected valid business unit, got err: %v", err)
	}

	for _, s := range []string{"", "   ", "\t", "\n"} {
		if err := cv.Validate(P{Unit: s}); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
}

func TestCommentValidation(t *testing.T) {
	type P struct {
		Comment string `validate:"comment"`
	}
	cv := NewValidator()

	for _, s := range []string{
		"",
		"missing bank details",
		"multi\nline\tnote",
		strings.Repeat("x", maxCommentLen),
	} {
		if err := cv.Validate(P{Comment: s}); err != nil {
			t.Fatalf("expected valid comment %q, got err: %v", s, err)
		}
	}

	for _, s := range []string{
		strings.Repeat("x", maxCommentLen+1),
		"control\x00char",
		"escape\x1bseq",
	} {
		if err := cv.Validate(P{Comment: s}); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
}

func TestToFieldErrors_NonValidatorError(t *testing.T) {
	out := ToFieldErrors(errors.New("boom"))
	if len(out) != 1 || out[0].Field != "_" {
		t.Fatalf("fallback mapping: %+v", out)
	}
}
