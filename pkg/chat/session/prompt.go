package session

import "strings"

// PurposePrompt builds the default system prompt for a session scoped to
// a purpose. An empty purpose means no default prompt.
func PurposePrompt(purpose string) string {
	purpose = strings.TrimSpace(purpose)
	if purpose == "" {
		return ""
	}
	return "You are a helpful AI assistant specialized in " + purpose + ". " +
		"Provide relevant and focused responses within this domain."
}
