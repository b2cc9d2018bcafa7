package platform

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// Platform identifiers: start with a letter, then letters, digits or
	// underscores, at most 255 characters.
	identifierPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,254}$`)

	nonAlnumRun = regexp.MustCompile(`[^A-Za-z0-9]+`)
)

// SanitizeIdentifier normalizes an arbitrary principal or object name for
// embedding in derived names: uppercase, any run of non-alphanumeric
// characters collapsed to a single underscore, leading and trailing
// underscores trimmed.
func SanitizeIdentifier(name string) string {
	sanitized := nonAlnumRun.ReplaceAllString(name, "_")
	sanitized = strings.Trim(sanitized, "_")
	return strings.ToUpper(sanitized)
}

// ValidateIdentifier rejects names that cannot be used as a platform
// identifier. Every name embedded in a platform command goes through
// this check first.
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("identifier must not be empty")
	}
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("invalid identifier %q: must start with a letter and contain only letters, digits and underscores", name)
	}
	return nil
}

// ValidateQualifiedName validates a dot-separated object name such as
// "DB" or "DB.SCHEMA".
func ValidateQualifiedName(name string) error {
	if name == "" {
		return fmt.Errorf("qualified name must not be empty")
	}
	for _, part := range strings.Split(name, ".") {
		if err := ValidateIdentifier(part); err != nil {
			return err
		}
	}
	return nil
}
