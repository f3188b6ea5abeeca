package errors

import (
	"testing"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("word", "is required", "")

	if err.Field != "word" {
		t.Errorf("Expected field to be 'word', got '%s'", err.Field)
	}

	if err.Message != "is required" {
		t.Errorf("Expected message to be 'is required', got '%s'", err.Message)
	}

	expected := "validation error on field 'word': is required"
	if err.Error() != expected {
		t.Errorf("Expected error message to be '%s', got '%s'", expected, err.Error())
	}
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	if errs.Error() != "validation failed" {
		t.Errorf("Expected 'validation failed' for empty errors, got '%s'", errs.Error())
	}

	errs = append(errs, *NewValidationError("quest_id", "must be a number", nil))
	expected := "validation failed: quest_id must be a number"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for single error, got '%s'", expected, errs.Error())
	}

	errs = append(errs, *NewValidationError("code", "is required", nil))
	expected = "validation failed: 2 field errors"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for multiple errors, got '%s'", expected, errs.Error())
	}
}

func TestNewValidationErrorWithRule(t *testing.T) {
	err := NewValidationErrorWithRule("points", "must be between 0 and 5", "rating_points", 9)

	if err.Rule != "rating_points" {
		t.Errorf("Expected rule to be 'rating_points', got '%s'", err.Rule)
	}

	if err.Field != "points" {
		t.Errorf("Expected field to be 'points', got '%s'", err.Field)
	}
}
