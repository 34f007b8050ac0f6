package validator_test

import (
	"errors"
	"strings"
	"testing"
	"todolist/shared/failure"
	"todolist/shared/validator"
)

type noteRequest struct {
	Title    string `json:"title"    validate:"notblank,max=32"`
	Body     string `json:"body"     validate:"required,max=64"`
	Priority int    `json:"priority" validate:"gte=0,lte=5"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name        string
		data        *noteRequest
		expectError bool
	}{
		{
			name:        "valid struct",
			data:        &noteRequest{Title: "groceries", Body: "milk", Priority: 1},
			expectError: false,
		},
		{
			name:        "blank title",
			data:        &noteRequest{Title: "   ", Body: "milk"},
			expectError: true,
		},
		{
			name:        "missing body",
			data:        &noteRequest{Title: "groceries"},
			expectError: true,
		},
		{
			name:        "title too long",
			data:        &noteRequest{Title: strings.Repeat("a", 33), Body: "milk"},
			expectError: true,
		},
		{
			name:        "priority out of range",
			data:        &noteRequest{Title: "groceries", Body: "milk", Priority: 9},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateStruct(tt.data)

			if tt.expectError && err == nil {
				t.Error("expected validation error, got nil")
			}

			if !tt.expectError && err != nil {
				t.Errorf("expected no validation error, got: %v", err)
			}

			if err != nil && !errors.Is(err, failure.ErrInvalidInput) {
				t.Errorf("expected invalid input failure, got %v", err)
			}
		})
	}
}

func TestValidateVar(t *testing.T) {
	tests := []struct {
		name        string
		field       interface{}
		tag         string
		expectError bool
	}{
		{name: "valid required string", field: "test", tag: "required", expectError: false},
		{name: "empty required string", field: "", tag: "required", expectError: true},
		{name: "blank string", field: " \t", tag: "notblank", expectError: true},
		{name: "positive id", field: int64(3), tag: "gt=0", expectError: false},
		{name: "zero id", field: int64(0), tag: "gt=0", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateVar(tt.field, tt.tag)

			if tt.expectError && err == nil {
				t.Error("expected validation error, got nil")
			}

			if !tt.expectError && err != nil {
				t.Errorf("expected no validation error, got: %v", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		jsonBody    string
		expectError bool
	}{
		{name: "valid JSON", jsonBody: `{"title":"groceries","body":"milk","priority":2}`, expectError: false},
		{name: "invalid JSON", jsonBody: `{"title":"","body":"milk"}`, expectError: true},
		{name: "malformed JSON", jsonBody: `{"title":"groceries","body":}`, expectError: true},
		{name: "empty JSON", jsonBody: `{}`, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var data noteRequest
			err := validator.Validate(strings.NewReader(tt.jsonBody), &data)

			if tt.expectError && err == nil {
				t.Error("expected validation error, got nil")
			}

			if !tt.expectError && err != nil {
				t.Errorf("expected no validation error, got: %v", err)
			}
		})
	}
}

func TestValidationMessages(t *testing.T) {
	err := validator.ValidateStruct(&noteRequest{Title: "groceries"})
	if err == nil {
		t.Fatal("expected validation error for missing body")
	}

	if err.Error() != "Body is required" {
		t.Errorf("unexpected message: %s", err.Error())
	}

	err = validator.ValidateStruct(&noteRequest{Title: strings.Repeat("x", 40), Body: "b"})
	if err == nil || err.Error() != "Title must be at most 32 characters" {
		t.Errorf("unexpected message: %v", err)
	}
}
