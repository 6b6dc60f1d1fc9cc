package chat

import "regexp"

// systemPatterns match notices generated by the chat service itself
// (group changes, membership changes, encryption banners), in Italian and English.
// The short English verbs are matched anywhere in the body, so "I left early"
// is treated as a notice too.
var systemPatterns = compileAll(
	`ha cambiato l'immagine del gruppo`,
	`ha cambiato la descrizione del gruppo`,
	`ha aggiunto`,
	`ha lasciato`,
	`changed the group`,
	`added`,
	`left`,
	`created group`,
	`Messages and calls are end-to-end encrypted`,
	`I messaggi e le chiamate sono crittografati end-to-end`,
)

// IsSystemMessage reports whether body looks like an auto-generated notice.
func IsSystemMessage(body string) bool {
	return matchAny(systemPatterns, body)
}

func matchAny(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
