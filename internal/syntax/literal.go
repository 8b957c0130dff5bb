package syntax

import (
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// cookString returns the value of a quoted string literal.
func cookString(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	return unescape(raw[1:len(raw)-1], false)
}

// cookTemplate returns the value of a raw template chunk.
func cookTemplate(raw string) string {
	return unescape(raw, true)
}

func unescape(s string, template bool) string {
	if !strings.ContainsAny(s, "\\\r") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		c := s[i]
		if c == '\r' && template {
			// Template line terminators are normalized to \n.
			b.WriteByte('\n')
			i++
			if i < len(s) && s[i] == '\n' {
				i++
			}
			continue
		}
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			i++
			continue
		}

		i++
		c = s[i]
		switch c {
		case 'n':
			b.WriteByte('\n')
			i++
		case 't':
			b.WriteByte('\t')
			i++
		case 'r':
			b.WriteByte('\r')
			i++
		case 'b':
			b.WriteByte('\b')
			i++
		case 'f':
			b.WriteByte('\f')
			i++
		case 'v':
			b.WriteByte('\v')
			i++
		case '\r':
			i++
			if i < len(s) && s[i] == '\n' {
				i++
			}
		case '\n':
			i++
		case 'x':
			if r, ok := parseHex(s, i+1, 2); ok {
				b.WriteRune(r)
				i += 3
			} else {
				b.WriteByte('x')
				i++
			}
		case 'u':
			r, n := parseUnicodeEscape(s, i+1)
			if n == 0 {
				b.WriteByte('u')
				i++
				break
			}
			i += 1 + n
			if utf16.IsSurrogate(r) && strings.HasPrefix(s[i:], "\\u") {
				if lo, m := parseUnicodeEscape(s, i+2); m > 0 {
					if pair := utf16.DecodeRune(r, lo); pair != utf8.RuneError {
						r = pair
						i += 2 + m
					}
				}
			}
			b.WriteRune(r)
		default:
			if c >= '0' && c <= '7' {
				j := i
				v := 0
				for j < len(s) && j-i < 3 && s[j] >= '0' && s[j] <= '7' && v*8+int(s[j]-'0') <= 0377 {
					v = v*8 + int(s[j]-'0')
					j++
				}
				b.WriteRune(rune(v))
				i = j
				break
			}
			r, size := utf8.DecodeRuneInString(s[i:])
			if r != '\u2028' && r != '\u2029' {
				b.WriteRune(r)
			}
			i += size
		}
	}
	return b.String()
}

// parseUnicodeEscape parses the part of a \u escape after the u, returning
// the rune and the number of bytes consumed (0 when malformed).
func parseUnicodeEscape(s string, at int) (rune, int) {
	if at < len(s) && s[at] == '{' {
		end := strings.IndexByte(s[at:], '}')
		if end < 2 {
			return 0, 0
		}
		v, err := strconv.ParseUint(s[at+1:at+end], 16, 32)
		if err != nil || v > utf8.MaxRune {
			return 0, 0
		}
		return rune(v), end + 1
	}
	if r, ok := parseHex(s, at, 4); ok {
		return r, 4
	}
	return 0, 0
}

func parseHex(s string, at, n int) (rune, bool) {
	if at+n > len(s) {
		return 0, false
	}
	v, err := strconv.ParseUint(s[at:at+n], 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}

// normalizeNumber returns the canonical decimal form of a numeric literal,
// the way the language itself turns the number into a property name:
// 0x10 becomes "16", 1.50 becomes "1.5" and 1e21 becomes "1e+21".
func normalizeNumber(raw string) string {
	s := strings.ReplaceAll(raw, "_", "")
	bigint := strings.HasSuffix(s, "n")
	s = strings.TrimSuffix(s, "n")

	base := 0
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "0x"):
		base, s = 16, s[2:]
	case strings.HasPrefix(lower, "0o"):
		base, s = 8, s[2:]
	case strings.HasPrefix(lower, "0b"):
		base, s = 2, s[2:]
	case isLegacyOctal(s):
		base, s = 8, s[1:]
	}

	if base != 0 || bigint {
		if base == 0 {
			base = 10
		}
		n, ok := new(big.Int).SetString(s, base)
		if !ok {
			return raw
		}
		if bigint {
			return n.String()
		}
		f, _ := new(big.Float).SetInt(n).Float64()
		return formatNumber(f)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return raw
	}
	return formatNumber(f)
}

func isLegacyOctal(s string) bool {
	if len(s) < 2 || s[0] != '0' {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] < '0' || s[i] > '7' {
			return false
		}
	}
	return true
}

func formatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.IsNaN(f):
		return "NaN"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	s := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	return mant + "e" + sign + digits
}
