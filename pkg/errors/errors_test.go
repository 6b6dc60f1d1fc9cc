package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsHelpers(t *testing.T) {
	tests := []struct {
		name  string
		check func(error) bool
		match error
		other error
	}{
		{"validation", IsValidation, ErrValidation, ErrEncoding},
		{"unsupported media", IsUnsupportedMedia, ErrUnsupportedMedia, ErrValidation},
		{"encoding", IsEncoding, ErrEncoding, ErrDecryption},
		{"decryption", IsDecryption, ErrDecryption, ErrEncoding},
		{"not configured", IsNotConfigured, ErrNotConfigured, ErrValidation},
		{"too large", IsTooLarge, ErrTooLarge, ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.check(tt.match) {
				t.Errorf("direct match not detected")
			}
			if !tt.check(fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", tt.match))) {
				t.Errorf("wrapped match not detected")
			}
			if tt.check(tt.other) {
				t.Errorf("unexpected match for %v", tt.other)
			}
			if tt.check(nil) {
				t.Errorf("nil should not match")
			}
			if tt.check(errors.New("something else")) {
				t.Errorf("unrelated error should not match")
			}
		})
	}
}
