package status

import (
	"math/rand"
	"strings"
)

// PlayerPlaceholder is the token login messages use for the player name.
const PlayerPlaceholder = "%player%"

// SelectLoginMessage picks one of the configured messages uniformly at
// random and substitutes every literal occurrence of the placeholder
// with name. The name is never interpreted as markup.
func SelectLoginMessage(messages []string, name string) string {
	if len(messages) == 0 {
		return ""
	}
	message := messages[rand.Intn(len(messages))]
	return strings.ReplaceAll(message, PlayerPlaceholder, name)
}
