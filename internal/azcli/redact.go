package azcli

import "regexp"

// RedactionMarker replaces sensitive values in logged command output.
const RedactionMarker = "<redacted>"

// Redaction is a logging-path concern only: callers that need the real value
// (key retrieval flows) read it from the Result, which is never redacted.
var (
	secretFieldPattern = regexp.MustCompile(`("(?:accessToken|access_token|refreshToken|refresh_token|clientSecret|client_secret|client-secret|primaryKey|secondaryKey)"\s*:\s*")[^"]*(")`)
	bearerPattern      = regexp.MustCompile(`(?i)(authorization:\s*bearer\s+)\S+`)
)

// Redact replaces known secret-bearing JSON field values and Authorization
// bearer tokens in text with RedactionMarker.
func Redact(text string) string {
	text = secretFieldPattern.ReplaceAllString(text, "${1}"+RedactionMarker+"${2}")
	text = bearerPattern.ReplaceAllString(text, "${1}"+RedactionMarker)
	return text
}
