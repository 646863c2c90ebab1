package iam

import (
	"errors"
	"strings"
	"testing"
)

func TestAggregationError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewAggregationError("list databases", cause)
	if !IsAggregationError(err) {
		t.Fatalf("expected AggregationError, got %T", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to survive errors.Is")
	}
	if !strings.Contains(err.Error(), "list databases") {
		t.Fatalf("message should name the failed step: %q", err.Error())
	}
	if NewAggregationError("noop", nil) != nil {
		t.Fatalf("nil cause must yield nil error")
	}
	if IsAggregationError(ErrMissingSubject) {
		t.Fatalf("sentinel should not match AggregationError")
	}
}
