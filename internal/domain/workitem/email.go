package workitem

import (
	"regexp"
	"strings"
)

// emailPattern matches address-like substrings in free text.
//
// Limits: no quoted local parts, no IP-literal domains, no internationalized
// addresses. The top-level label must be word characters only, so a trailing
// period after an address is not captured.
var emailPattern = regexp.MustCompile(`[\w.+-]+@[\w.-]+\.\w+`)

// ScanEmails returns every email-pattern match in text, in order of appearance.
// Duplicates within the text are kept.
func ScanEmails(text string) []string {
	if text == "" {
		return nil
	}
	return emailPattern.FindAllString(text, -1)
}

// LocalPart returns the part of an email address before the '@'.
// An address without '@' is returned unchanged.
func LocalPart(email string) string {
	local, _, found := strings.Cut(email, "@")
	if !found {
		return email
	}
	return local
}
