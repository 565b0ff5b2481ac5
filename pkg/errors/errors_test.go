package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	t.Parallel()

	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != MetadataFor(CodeInternal).HTTPStatus {
		t.Fatalf("expected internal metadata, got %+v", meta)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk full")
	wrapped := Wrap(CodeDependency, cause, "saving cart snapshot")

	if !errors.Is(wrapped, cause) {
		t.Fatal("expected wrapped error to match cause")
	}
	if wrapped.Code() != CodeDependency {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestAsFindsTypedErrorInChain(t *testing.T) {
	t.Parallel()

	typed := New(CodeValidation, "quoted price cannot be negative")
	chained := fmt.Errorf("add item: %w", typed)

	found := As(chained)
	if found == nil {
		t.Fatal("expected typed error in chain")
	}
	if found.Code() != CodeValidation {
		t.Fatalf("unexpected code %s", found.Code())
	}

	if As(errors.New("plain")) != nil {
		t.Fatal("expected nil for untyped error")
	}
}

func TestDumpCollectsChain(t *testing.T) {
	t.Parallel()

	inner := errors.New("connection refused")
	err := Wrap(CodeDependency, inner, "ping redis")

	dump := Dump(err)
	if dump.Code != CodeDependency {
		t.Fatalf("unexpected code %s", dump.Code)
	}
	if len(dump.Chain) < 2 {
		t.Fatalf("expected chain with cause, got %v", dump.Chain)
	}
}
