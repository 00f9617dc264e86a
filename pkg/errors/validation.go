package errors

import (
	"strings"
	"unicode"
)

// maxNodeIDLength bounds node identifiers read from service metadata.
const maxNodeIDLength = 256

// ValidateNodeID validates a flow node identifier.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters or null bytes
//   - No surrounding whitespace
//   - Maximum length of 256 characters
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidFlow, "node id cannot be empty")
	}

	if len(id) > maxNodeIDLength {
		return New(ErrCodeInvalidFlow, "node id too long (max %d characters)", maxNodeIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidFlow, "node id contains invalid control characters")
		}
	}

	if strings.TrimSpace(id) != id {
		return New(ErrCodeInvalidFlow, "node id %q has surrounding whitespace", id)
	}

	return nil
}

// ValidateRow rejects negative row values passed into the layout core.
// name identifies the offending argument in the error message.
func ValidateRow(name string, row int) error {
	if row < 0 {
		return InvalidInput("%s must not be negative, got %d", name, row)
	}
	return nil
}
