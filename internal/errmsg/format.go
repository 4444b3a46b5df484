// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Library operations
	OpCoverScan Op = "scan cover folders"

	// Per-cover operations
	OpCoverOpen   Op = "open cover"
	OpCoverDecode Op = "decode cover"
	OpCoverTags   Op = "read album tags"

	// Ordering
	OpCoverSort Op = "sort cover"

	// Cache operations
	OpCacheOpen Op = "open color cache"
	OpCacheLoad Op = "load color cache"
	OpCacheSave Op = "save color cache"

	// Output
	OpCollageRender Op = "render collage"

	// Initialization
	OpConfigLoad Op = "load configuration"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
