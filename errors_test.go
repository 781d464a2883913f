package groundbase

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestWithContext(t *testing.T) {
	err := WithContext(ErrConstraintViolation, map[string]interface{}{
		"table": "project_counters",
	})

	if !errors.Is(err, ErrConstraintViolation) {
		t.Error("wrapped error lost its sentinel")
	}
	if !strings.Contains(err.Error(), "project_counters") {
		t.Errorf("context missing from message: %q", err.Error())
	}
	if WithContext(nil, map[string]interface{}{"a": 1}) != nil {
		t.Error("WithContext(nil) should stay nil")
	}
	if msg := WithContext(ErrNotFound, nil).Error(); msg != ErrNotFound.Error() {
		t.Errorf("empty context should not decorate the message: %q", msg)
	}
}

func TestErrorHelpers(t *testing.T) {
	wrap := func(err error) error {
		return fmt.Errorf("outer: %w", WithContext(err, map[string]interface{}{"k": "v"}))
	}

	if !IsNotFound(wrap(ErrNotFound)) {
		t.Error("IsNotFound should see through wrapping")
	}
	if !IsConstraintViolation(wrap(ErrConstraintViolation)) {
		t.Error("IsConstraintViolation should see through wrapping")
	}
	if !IsCorruptValue(wrap(ErrCorruptValue)) {
		t.Error("IsCorruptValue should see through wrapping")
	}
	if !IsSequenceContention(wrap(ErrSequenceContention)) {
		t.Error("IsSequenceContention should see through wrapping")
	}
	if !IsMissingTable(wrap(ErrMissingTable)) {
		t.Error("IsMissingTable should see through wrapping")
	}
	if IsNotFound(wrap(ErrConstraintViolation)) {
		t.Error("helpers must not cross-match")
	}
}

func TestRetryableVsPermanent(t *testing.T) {
	retryable := []error{ErrBackendUnavailable, ErrSequenceContention}
	permanent := []error{ErrNotFound, ErrConstraintViolation, ErrCorruptValue, ErrInvalidData, ErrInvalidConfig, ErrMissingTable}

	for _, err := range retryable {
		if !IsRetryable(err) {
			t.Errorf("%v should be retryable", err)
		}
		if IsPermanent(err) {
			t.Errorf("%v should not be permanent", err)
		}
	}
	for _, err := range permanent {
		if !IsPermanent(err) {
			t.Errorf("%v should be permanent", err)
		}
		if IsRetryable(err) {
			t.Errorf("%v should not be retryable", err)
		}
	}
}
