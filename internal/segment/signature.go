package segment

import (
	"regexp"
	"strings"
)

var (
	emailPattern      = regexp.MustCompile(`[\w.+-]+@[\w-]+\.[\w.-]+`)
	phonePattern      = regexp.MustCompile(`(?i)(?:^|[\s,;(])(tel|phone|fax|mobile|cell|טל|טלפון|פקס|נייד)\.?\s*[:.]?\s*\+?[\d(][\d\s().-]{5,}\d`)
	intlPhonePattern  = regexp.MustCompile(`\+\d{1,3}[\s-]?\(?\d{1,4}\)?[\s-]?\d{3,4}[\s-]?\d{3,4}`)
	salutationPattern = regexp.MustCompile(`(?i)^(sincerely|respectfully( submitted)?|yours (truly|faithfully|sincerely)|(best|kind|warm) regards|regards|בכבוד רב|בברכה)(?:[\s,.:;]|$)`)
	signedPattern     = regexp.MustCompile(`(?i)(signed electronically|electronically signed|digitally signed|/s/\s|נחתם באופן אלקטרוני|נחתם אלקטרונית|נחתם דיגיטלית)`)
)

// contactBlockMaxRunes bounds how long a segment with contact details may be
// and still count as a signature block rather than testimony mentioning an address
const contactBlockMaxRunes = 160

// isSignatureBlock reports whether a segment is a signature or contact block
func isSignatureBlock(text string) bool {
	trimmed := strings.TrimSpace(text)
	if salutationPattern.MatchString(trimmed) || signedPattern.MatchString(trimmed) {
		return true
	}

	hasContact := emailPattern.MatchString(trimmed) ||
		phonePattern.MatchString(trimmed) ||
		intlPhonePattern.MatchString(trimmed)

	return hasContact && len([]rune(trimmed)) < contactBlockMaxRunes
}
