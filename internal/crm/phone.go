package crm

import "strings"

// NormalizePhone reduces a phone to +<digits>. An 11 digit number with the
// 8 trunk prefix becomes 7..., a bare 10 digit number gets a leading 7.
// Other shapes are passed through as digits only.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	switch {
	case len(digits) == 11 && digits[0] == '8':
		digits = "7" + digits[1:]
	case len(digits) == 10:
		digits = "7" + digits
	}
	return "+" + digits
}
