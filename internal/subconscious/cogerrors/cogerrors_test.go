package cogerrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrappedSentinelsMatchErrorsIs(t *testing.T) {
	wrapped := fmt.Errorf("episodic: store x: %w: %w", ErrStorage, errors.New("disk full"))
	if !errors.Is(wrapped, ErrStorage) {
		t.Error("expected errors.Is to match the wrapped sentinel")
	}
	if errors.Is(wrapped, ErrProvider) {
		t.Error("expected errors.Is to not match an unrelated sentinel")
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	all := []error{ErrProvider, ErrStorage, ErrParse, ErrValidation, ErrCapacityOverflow}
	for i := range all {
		for j := range all {
			if i == j {
				continue
			}
			if errors.Is(all[i], all[j]) {
				t.Errorf("sentinels %v and %v should be distinct", all[i], all[j])
			}
		}
	}
}
