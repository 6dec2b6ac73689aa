package azcli

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	ansiPattern      = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)
	toolErrorPattern = regexp.MustCompile(`^\S+: error:`)
)

// StripANSI removes ANSI escape sequences from text. The az CLI colorizes
// error output when attached to a terminal; all message extraction operates
// on the stripped form.
func StripANSI(text string) string {
	return ansiPattern.ReplaceAllString(text, "")
}

// ExtractErrorMessage reduces raw command output to a one-line operator-facing
// message. The sources are tried in strict priority order:
//
//  1. the first embedded JSON object/array carrying error.message or message
//  2. the first "ERROR:"-prefixed line
//  3. the first "<tool>: error:" line
//  4. a Code:/Message: line pair
//  5. the first non-blank, non-warning line preceding any traceback
//
// Empty or all-whitespace input yields "".
func ExtractErrorMessage(text string) string {
	text = StripANSI(text)
	if strings.TrimSpace(text) == "" {
		return ""
	}

	if msg := jsonErrorMessage(text); msg != "" {
		return msg
	}

	lines := strings.Split(text, "\n")

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(trimmed, "ERROR:"); ok {
			if rest = strings.TrimSpace(rest); rest != "" {
				return rest
			}
			return trimmed
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if toolErrorPattern.MatchString(trimmed) {
			if i := strings.LastIndex(trimmed, ":"); i >= 0 {
				if rest := strings.TrimSpace(trimmed[i+1:]); rest != "" {
					return rest
				}
			}
			return trimmed
		}
	}

	if msg := codeMessagePair(lines); msg != "" {
		return msg
	}

	return firstUsableLine(lines)
}

// jsonErrorMessage scans for embedded JSON and returns its error message, if
// any. Candidates that decode but lack a message field do not stop the scan.
func jsonErrorMessage(text string) string {
	for i := 0; i < len(text); i++ {
		if text[i] != '{' && text[i] != '[' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(text[i:]))
		var v any
		if err := dec.Decode(&v); err != nil {
			continue
		}
		if msg := messageField(v); msg != "" {
			return msg
		}
	}
	return ""
}

func messageField(v any) string {
	obj, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	if inner, ok := obj["error"].(map[string]any); ok {
		if msg, ok := inner["message"].(string); ok && msg != "" {
			return msg
		}
	}
	if msg, ok := obj["message"].(string); ok && msg != "" {
		return msg
	}
	return ""
}

// codeMessagePair pairs the first Code: line with the first Message: line,
// each found independently.
func codeMessagePair(lines []string) string {
	var code, message string
	var haveCode, haveMessage bool
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(trimmed, "Code:"); ok && !haveCode {
			code = strings.TrimSpace(rest)
			haveCode = true
		}
		if rest, ok := strings.CutPrefix(trimmed, "Message:"); ok && !haveMessage {
			message = strings.TrimSpace(rest)
			haveMessage = true
		}
	}
	if haveCode && haveMessage {
		return code + ": " + message
	}
	return ""
}

// firstUsableLine returns the first non-blank line that is not a warning and
// appears before any traceback marker. A traceback seen first yields "".
func firstUsableLine(lines []string) string {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "Traceback") {
			return ""
		}
		if strings.HasPrefix(trimmed, "WARNING") || strings.HasPrefix(trimmed, "Warning") {
			continue
		}
		return trimmed
	}
	return ""
}
