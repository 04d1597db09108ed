package errors

import (
	"strings"
	"unicode"
)

// ValidateElementID validates a node or edge identifier for safety and
// correctness. Identifiers end up as XML id attributes and cache key
// components, so the rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters or null bytes
//   - No whitespace
//   - No characters with XML attribute meaning (quotes, angle brackets, &)
//   - Maximum length of 256 characters
func ValidateElementID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "element id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "element id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "element id %q contains control characters", id)
		}
		if unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "element id %q contains whitespace", id)
		}
	}

	if strings.ContainsAny(id, `<>&"'`) {
		return New(ErrCodeInvalidInput, "element id %q contains XML-reserved characters", id)
	}

	return nil
}

// ValidateComponentType validates a component type tag.
// Type tags select template specs from the registry; unknown tags are
// handled by the fallback template, but malformed tags are rejected here.
func ValidateComponentType(typ string) error {
	if typ == "" {
		return New(ErrCodeInvalidInput, "component type cannot be empty")
	}

	if len(typ) > 128 {
		return New(ErrCodeInvalidInput, "component type too long (max 128 characters)")
	}

	for _, r := range typ {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "component type %q contains invalid characters", typ)
		}
	}

	return nil
}

// ValidateOutputPath validates a relative path used for manifest entries.
// It prevents path traversal and absolute paths inside the archive.
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "manifest path cannot be empty")
	}

	if len(path) > 500 {
		return New(ErrCodeInvalidPath, "manifest path too long (max 500 characters)")
	}

	if strings.HasPrefix(path, "/") || strings.HasPrefix(path, "\\") {
		return New(ErrCodeInvalidPath, "manifest path must be relative: %q", path)
	}

	dangerous := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}
	for _, pattern := range dangerous {
		if strings.Contains(path, pattern) {
			return New(ErrCodeInvalidPath, "manifest path contains invalid sequence %q", pattern)
		}
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "manifest path contains control characters")
		}
	}

	return nil
}
