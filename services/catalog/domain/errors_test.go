package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors_Distinct(t *testing.T) {
	all := []error{ErrItemNotFound, ErrDuplicateItemName, ErrConcurrencyConflict, ErrInvalidItem}
	for i, a := range all {
		if a == nil {
			t.Fatalf("sentinel %d must not be nil", i)
		}
		for j, b := range all {
			if i != j && errors.Is(a, b) {
				t.Fatalf("sentinels %q and %q must not match each other", a, b)
			}
		}
	}
}

func TestSentinelErrors_WrappedIdentity(t *testing.T) {
	wrapped := fmt.Errorf("update item: %w", ErrConcurrencyConflict)
	if !errors.Is(wrapped, ErrConcurrencyConflict) {
		t.Fatal("errors.Is must match wrapped ErrConcurrencyConflict")
	}

	wrapped2 := fmt.Errorf("%w: %w", ErrInvalidItem, errors.New("price out of range"))
	if !errors.Is(wrapped2, ErrInvalidItem) {
		t.Fatal("errors.Is must match double-wrapped ErrInvalidItem")
	}
}
