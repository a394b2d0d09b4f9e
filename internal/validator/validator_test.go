package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNew verifies that New() returns a properly configured validator
func TestNew(t *testing.T) {
	v := New()
	require.NotNil(t, v, "New() should return a non-nil validator")
}

// TestNotblankValidator tests the custom notblank validation
func TestNotblankValidator(t *testing.T) {
	v := New()

	type TestStruct struct {
		Name string `validate:"notblank"`
	}

	testCases := []struct {
		name        string
		input       string
		expectError bool
		description string
	}{
		{
			name:        "valid_string",
			input:       "valid",
			expectError: false,
			description: "Normal string should pass",
		},
		{
			name:        "valid_with_spaces",
			input:       "  valid  ",
			expectError: false,
			description: "String with leading/trailing spaces should pass (has content)",
		},
		{
			name:        "whitespace_only_spaces",
			input:       "   ",
			expectError: true,
			description: "Whitespace-only (spaces) should fail",
		},
		{
			name:        "whitespace_only_tabs",
			input:       "\t\t",
			expectError: true,
			description: "Whitespace-only (tabs) should fail",
		},
		{
			name:        "whitespace_mixed",
			input:       " \t\n ",
			expectError: true,
			description: "Mixed whitespace-only should fail",
		},
		{
			name:        "empty_string",
			input:       "",
			expectError: true,
			description: "Empty string should fail (TrimSpace returns empty)",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Struct(TestStruct{Name: tc.input})
			if tc.expectError {
				assert.Error(t, err, tc.description)
			} else {
				assert.NoError(t, err, tc.description)
			}
		})
	}
}

// TestCouponcodeValidator tests the custom couponcode validation
func TestCouponcodeValidator(t *testing.T) {
	v := New()

	type TestStruct struct {
		Code string `validate:"couponcode"`
	}

	testCases := []struct {
		name        string
		input       string
		expectError bool
		description string
	}{
		{
			name:        "simple_uppercase",
			input:       "SAVE10",
			expectError: false,
			description: "Letters and digits should pass",
		},
		{
			name:        "lowercase",
			input:       "save10",
			expectError: false,
			description: "Lowercase passes; case is normalized by the service",
		},
		{
			name:        "hyphen_and_underscore",
			input:       "BLACK-FRIDAY_24",
			expectError: false,
			description: "Hyphen and underscore are allowed",
		},
		{
			name:        "surrounding_whitespace",
			input:       "  SAVE10  ",
			expectError: false,
			description: "Surrounding whitespace is trimmed before matching",
		},
		{
			name:        "embedded_space",
			input:       "SAVE 10",
			expectError: true,
			description: "Embedded whitespace should fail",
		},
		{
			name:        "special_characters",
			input:       "SAVE10!",
			expectError: true,
			description: "Punctuation outside the allowed set should fail",
		},
		{
			name:        "empty_string",
			input:       "",
			expectError: true,
			description: "Empty string has no matching characters",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Struct(TestStruct{Code: tc.input})
			if tc.expectError {
				assert.Error(t, err, tc.description)
			} else {
				assert.NoError(t, err, tc.description)
			}
		})
	}
}
