package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// loginPattern matches GitHub-style usernames: alphanumerics and single
// interior hyphens, no leading/trailing hyphen and no consecutive hyphens.
// Length is checked separately in ValidateLogin.
var loginPattern = regexp.MustCompile(`^[a-zA-Z0-9](?:-?[a-zA-Z0-9])*$`)

// ValidateRepoCoords validates an owner/repo pair.
// Both parts are required; cache keys and API URLs are built from them, so
// a malformed pair fails fast here rather than producing a bad key.
func ValidateRepoCoords(owner, repo string) error {
	if owner == "" {
		return New(ErrCodeInvalidRepo, "repository owner cannot be empty")
	}
	if repo == "" {
		return New(ErrCodeInvalidRepo, "repository name cannot be empty")
	}
	for _, part := range []string{owner, repo} {
		if strings.ContainsAny(part, "/\\ ") {
			return New(ErrCodeInvalidRepo, "repository coordinate contains invalid characters: %q", part)
		}
	}
	return nil
}

// ValidatePagePath validates a repository file path for safety.
// It rejects paths that could be used for traversal or that would produce
// ambiguous cache keys.
//
// The validation rules are intentionally conservative:
//   - No empty paths
//   - No control characters or null bytes
//   - No path traversal sequences (.., //)
//   - No leading slash (paths are repo-relative)
//   - Maximum length of 512 characters
func ValidatePagePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "page path cannot be empty")
	}

	if len(path) > 512 {
		return New(ErrCodeInvalidPath, "page path too long (max 512 characters)")
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "page path contains invalid control characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "page path must be repository-relative")
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(path, pattern) {
			return New(ErrCodeInvalidPath, "page path contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateLogin validates a username.
// Usernames appear in cache keys and URLs, so the character set is
// restricted to the GitHub username alphabet.
func ValidateLogin(login string) error {
	if login == "" {
		return New(ErrCodeInvalidLogin, "login cannot be empty")
	}
	if len(login) > 39 {
		return New(ErrCodeInvalidLogin, "login too long (max 39 characters)")
	}
	if !loginPattern.MatchString(login) {
		return New(ErrCodeInvalidLogin, "invalid login: %q", login)
	}
	return nil
}

// ValidateRef validates a branch or revision reference.
// An empty ref is valid and means "default branch".
func ValidateRef(ref string) error {
	if ref == "" {
		return nil
	}
	if strings.ContainsAny(ref, " \t\n\x00") || strings.Contains(ref, "..") {
		return New(ErrCodeInvalidInput, "invalid ref: %q", ref)
	}
	return nil
}
