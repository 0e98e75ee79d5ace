package models

import (
	"strings"
	"testing"
)

func TestNewItemName(t *testing.T) {
	t.Run("valid single character", func(t *testing.T) {
		n, err := NewItemName("a")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n.String() != "a" {
			t.Fatalf("expected %q, got %q", "a", n.String())
		}
	})

	t.Run("valid 50 characters", func(t *testing.T) {
		s := strings.Repeat("x", 50)
		if _, err := NewItemName(s); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("multibyte characters count once", func(t *testing.T) {
		s := strings.Repeat("é", 50)
		if _, err := NewItemName(s); err != nil {
			t.Fatalf("unexpected error for 50 runes: %v", err)
		}
	})

	t.Run("empty string returns error", func(t *testing.T) {
		if _, err := NewItemName(""); err == nil {
			t.Fatal("expected error, got nil")
		}
	})

	t.Run("51 characters returns error", func(t *testing.T) {
		if _, err := NewItemName(strings.Repeat("x", 51)); err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}
