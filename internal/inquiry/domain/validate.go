package domain

import (
	"regexp"
	"strings"
)

// MaxMessageLength caps the trimmed message length in UTF-16 code units.
const MaxMessageLength = 5000

// notSpace excludes every rune browsers treat as whitespace, including
// vertical tab, the Unicode space separators and the byte order mark.
const notSpace = `[^\s\p{Z}\x0B\x{FEFF}@]`

var emailPattern = regexp.MustCompile(`^` + notSpace + `+@` + notSpace + `+\.` + notSpace + `+$`)

// IsSpam reports whether the honeypot field was filled in. Only bots see it.
func IsSpam(raw *RawSubmission) bool {
	if raw == nil {
		return false
	}
	return strings.TrimSpace(raw.City) != ""
}

// Validate checks a submission against the required-field and format rules.
// The first failing rule wins.
func Validate(raw *RawSubmission) *ValidationError {
	if raw == nil {
		return &ValidationError{Message: MsgInvalidPayload}
	}

	name := strings.TrimSpace(raw.Name)
	email := strings.TrimSpace(raw.Email)
	message := strings.TrimSpace(raw.Message)

	if name == "" || email == "" || message == "" {
		return &ValidationError{Message: MsgRequiredFields}
	}
	if !emailPattern.MatchString(email) {
		return &ValidationError{Message: MsgInvalidEmail}
	}
	if utf16Length(message) > MaxMessageLength {
		return &ValidationError{Message: MsgMessageTooLong}
	}
	return nil
}

// utf16Length counts runes outside the Basic Multilingual Plane twice.
func utf16Length(s string) int {
	n := 0
	for _, r := range s {
		if r > 0xFFFF {
			n += 2
		} else {
			n++
		}
	}
	return n
}
