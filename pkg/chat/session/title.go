package session

import "strings"

const (
	// DefaultTitle is shown for a session that has no explicit title and
	// no user message to derive one from.
	DefaultTitle = "New Conversation"

	titleLimit    = 50
	titleTruncate = 47
)

// DeriveTitle resolves the display title of a session. An explicit title
// always wins. Otherwise the first user message is used, truncated to 47
// characters plus an ellipsis when it exceeds 50.
func DeriveTitle(explicit, firstUserMessage string) string {
	if strings.TrimSpace(explicit) != "" {
		return explicit
	}

	derived := strings.TrimSpace(firstUserMessage)
	if derived == "" {
		return DefaultTitle
	}

	runes := []rune(derived)
	if len(runes) > titleLimit {
		return string(runes[:titleTruncate]) + "..."
	}
	return derived
}
