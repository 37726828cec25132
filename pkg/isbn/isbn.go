// Package isbn normalizes and checksum-validates ISBN-10/ISBN-13 strings.
// Catalog identity matching keys on cleaned ISBNs, so every ISBN entering
// the system goes through Clean first.
package isbn

import "strings"

// Clean strips an ISBN down to its significant characters.
//
// Rules:
//   - uppercase, then drop everything except digits and 'X'
//   - longer than 10 chars → digits only (ISBN-13 never contains 'X')
//   - 10 chars or fewer with an 'X' anywhere but the last position →
//     drop all 'X' (misplaced check character)
//
// Clean is idempotent; empty input yields "".
func Clean(raw string) string {
	upper := strings.ToUpper(raw)

	var b strings.Builder
	b.Grow(len(upper))
	for _, r := range upper {
		if (r >= '0' && r <= '9') || r == 'X' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	if len(cleaned) > 10 {
		cleaned = strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, cleaned)
		return cleaned
	}

	if idx := strings.IndexByte(cleaned, 'X'); idx >= 0 && idx != len(cleaned)-1 {
		cleaned = strings.ReplaceAll(cleaned, "X", "")
	}
	return cleaned
}

// IsValid reports whether raw cleans to a checksum-valid ISBN-10 or ISBN-13.
func IsValid(raw string) bool {
	cleaned := Clean(raw)
	switch len(cleaned) {
	case 10:
		return validISBN10(cleaned)
	case 13:
		return validISBN13(cleaned)
	default:
		return false
	}
}

// validISBN10 checks the weighted mod-11 checksum. Weights run 10..2 over
// the first nine digits; the tenth character is the check digit, 'X' = 10.
func validISBN10(s string) bool {
	sum := 0
	for i := 0; i < 9; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return false
		}
		sum += int(c-'0') * (10 - i)
	}

	check := 0
	switch last := s[9]; {
	case last == 'X':
		check = 10
	case last >= '0' && last <= '9':
		check = int(last - '0')
	default:
		return false
	}

	return (sum+check)%11 == 0
}

// validISBN13 checks the alternating 1,3 weighted checksum over the first
// twelve digits; the thirteenth digit must equal (10 - sum%10) % 10.
func validISBN13(s string) bool {
	sum := 0
	for i := 0; i < 12; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}

	last := s[12]
	if last < '0' || last > '9' {
		return false
	}

	return int(last-'0') == (10-sum%10)%10
}
