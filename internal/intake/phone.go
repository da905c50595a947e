package intake

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/groupscholar/intake-normalizer/internal/domain"
)

var phoneExtensionRe = regexp.MustCompile(`(?i)\s*(?:ext\.?|x|#)\s*\d+$`)

// normalizePhone runs only when the input schema carried a phone column.
// A present-but-empty value is missing; a value that still contains letters
// after extension stripping is unparseable.
func (n *Normalizer) normalizePhone(app *domain.Application, row RawRow) {
	raw, ok := row["phone"]
	if !ok {
		return
	}
	raw = strings.TrimSpace(raw)
	app.Phone = raw
	if raw == "" {
		app.AddFlag(domain.FlagMissingPhone)
		return
	}

	normalized, country, ok := n.parsePhone(raw)
	if !ok {
		app.AddFlag(domain.FlagInvalidPhone)
		return
	}
	app.PhoneNormalized = normalized
	app.PhoneCountry = country
}

func (n *Normalizer) parsePhone(raw string) (normalized, country string, ok bool) {
	stripped := phoneExtensionRe.ReplaceAllString(raw, "")
	for _, r := range stripped {
		if unicode.IsLetter(r) {
			return "", "", false
		}
	}

	digits := keepDigits(stripped)
	digits = strings.TrimPrefix(digits, "00")

	switch {
	case len(digits) == 10:
		return "+1" + digits, "US/Canada", true
	case len(digits) == 11 && strings.HasPrefix(digits, "1"):
		return "+" + digits, "US/Canada", true
	case len(digits) >= 11 && len(digits) <= 15:
		return "+" + digits, n.callingCountry(digits), true
	default:
		return "", "", false
	}
}

// callingCountry matches the longest known dialing prefix so that, e.g.,
// 44 wins over 4 and 880 wins over 88.
func (n *Normalizer) callingCountry(digits string) string {
	for width := 3; width >= 1; width-- {
		if len(digits) < width {
			continue
		}
		if country, ok := n.rules.CallingCodes[digits[:width]]; ok {
			return country
		}
	}
	return "International"
}

func keepDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
