package bot

import "strings"

const (
	DefaultGreeting = "Hi! Thanks for writing to us."
	DefaultAskOrder = "What would you like to order today?"
)

// ComposeReply builds the first answer to a new chat: greeting, order
// prompt, then the short order id, separated by blank lines.
func ComposeReply(c Config, orderID string) string {
	return strings.Join([]string{
		textOr(c.GreetingMessage, DefaultGreeting),
		textOr(c.AskOrderMessage, DefaultAskOrder),
		ShortRef(orderID),
	}, "\n\n")
}

// ShortRef is the first 8 characters of an order id.
func ShortRef(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func textOr(s *string, def string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return def
	}
	return *s
}
