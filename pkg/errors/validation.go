package errors

import (
	"path"
	"strings"
	"unicode"
)

// acceptedExtensions lists the upload extensions the resolver understands.
// Anything else is rejected before staging begins.
var acceptedExtensions = map[string]bool{
	".html": true,
	".htm":  true,
	".zip":  true,
}

// ValidateTitle validates a course title for display and filename use.
//
// The validation rules are intentionally conservative:
//   - No empty titles (after trimming whitespace)
//   - No control characters
//   - Maximum length of 200 characters
func ValidateTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return New(ErrCodeInvalidTitle, "course title cannot be empty")
	}

	const maxTitleLength = 200
	if len(trimmed) > maxTitleLength {
		return New(ErrCodeInvalidTitle, "course title too long (max %d characters)", maxTitleLength)
	}

	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidTitle, "course title contains invalid control characters")
		}
	}

	return nil
}

// ValidateUploadName validates an uploaded filename before staging.
// It ensures the name is a simple basename with an accepted extension.
func ValidateUploadName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "upload filename cannot be empty")
	}

	// Must be a simple filename, not a path
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidInput, "upload filename cannot contain path separators")
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidInput, "upload filename cannot contain traversal sequences")
	}

	ext := strings.ToLower(path.Ext(name))
	if !acceptedExtensions[ext] {
		return New(ErrCodeInvalidInput, "unsupported upload extension %q (accepted: .html, .htm, .zip)", ext)
	}

	return nil
}

// ValidateRelPath validates a relative file path inside a staged tree.
// It prevents path traversal attacks and rejects absolute paths.
//
// Validation rules:
//   - Path cannot be empty
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal segments (..)
//   - No backslashes (Windows-style paths)
//   - Maximum length of 500 characters
func ValidateRelPath(p string) error {
	if p == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(p) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	// Check for null bytes and control characters
	for _, r := range p {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	// Must not be absolute path
	if strings.HasPrefix(p, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	// No backslashes (potential Windows path injection)
	if strings.Contains(p, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	// Check for path traversal
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain traversal segments: %q", p)
		}
	}

	return nil
}

// SanitizeTitle converts a course title into a safe filename stem.
// Whitespace runs collapse to a single underscore and any rune outside
// [A-Za-z0-9._-] is dropped. An empty result falls back to "course".
func SanitizeTitle(title string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.TrimSpace(title) {
		switch {
		case unicode.IsSpace(r):
			if !lastUnderscore {
				b.WriteRune('_')
				lastUnderscore = true
			}
		case r == '_' || r == '-' || r == '.' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastUnderscore = false
		}
	}

	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "course"
	}
	return out
}
