package parser

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// parseNumber converts numeric literal text to its value.
func parseNumber(text string) (float64, error) {
	text = strings.ReplaceAll(text, "_", "")

	if len(text) > 1 && text[0] == '0' {
		base := 0
		switch text[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		default:
			if isDigit(text[1]) {
				return 0, errors.New("legacy octal literal in strict mode")
			}
		}
		if base != 0 {
			i, ok := new(big.Int).SetString(text[2:], base)
			if !ok {
				return 0, fmt.Errorf("invalid number %q", text)
			}
			f, _ := new(big.Float).SetInt(i).Float64()
			return f, nil
		}
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("invalid number %q", text)
	}
	return f, nil
}

// unquote decodes a quoted string literal. The result is false when the
// string holds an unpaired surrogate, which has no UTF-8 spelling.
func unquote(raw string) (string, bool, error) {
	if len(raw) < 2 {
		return "", false, errors.New("unterminated string")
	}
	s := raw[1 : len(raw)-1]
	units := make([]uint16, 0, len(s))

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		if r != '\\' {
			units = utf16.AppendRune(units, r)
			continue
		}
		if i >= len(s) {
			return "", false, errors.New("unterminated escape sequence")
		}

		r, size = utf8.DecodeRuneInString(s[i:])
		i += size
		switch r {
		case 'n':
			units = append(units, '\n')
		case 't':
			units = append(units, '\t')
		case 'r':
			units = append(units, '\r')
		case 'b':
			units = append(units, '\b')
		case 'f':
			units = append(units, '\f')
		case 'v':
			units = append(units, '\v')
		case '\r':
			// Line continuation
			if i < len(s) && s[i] == '\n' {
				i++
			}
		case '\n', '\u2028', '\u2029':
		case '0':
			if i < len(s) && isDigit(s[i]) {
				return "", false, errors.New("octal escape sequence in strict mode")
			}
			units = append(units, 0)
		case '1', '2', '3', '4', '5', '6', '7', '8', '9':
			return "", false, errors.New("octal escape sequence in strict mode")
		case 'x':
			v, n, err := hexDigits(s[i:], 2)
			if err != nil {
				return "", false, err
			}
			i += n
			units = append(units, uint16(v))
		case 'u':
			v, n, err := unicodeEscape(s[i:])
			if err != nil {
				return "", false, err
			}
			i += n
			if v > 0xFFFF {
				units = utf16.AppendRune(units, rune(v))
			} else {
				units = append(units, uint16(v))
			}
		default:
			units = utf16.AppendRune(units, r)
		}
	}

	if !wellFormed(units) {
		return "", false, nil
	}
	return string(utf16.Decode(units)), true, nil
}

// unicodeEscape reads the part of a \u escape after the u.
func unicodeEscape(s string) (uint32, int, error) {
	if !strings.HasPrefix(s, "{") {
		return hexDigits(s, 4)
	}
	end := strings.IndexByte(s, '}')
	if end < 2 {
		return 0, 0, errors.New("invalid unicode escape sequence")
	}
	v, err := strconv.ParseUint(s[1:end], 16, 32)
	if err != nil || v > utf8.MaxRune {
		return 0, 0, errors.New("invalid unicode escape sequence")
	}
	return uint32(v), end + 1, nil
}

// hexDigits reads exactly n hexadecimal digits.
func hexDigits(s string, n int) (uint32, int, error) {
	if len(s) < n {
		return 0, 0, errors.New("invalid hexadecimal escape sequence")
	}
	v, err := strconv.ParseUint(s[:n], 16, 32)
	if err != nil {
		return 0, 0, errors.New("invalid hexadecimal escape sequence")
	}
	return uint32(v), n, nil
}

// wellFormed reports whether every surrogate in units is paired.
func wellFormed(units []uint16) bool {
	for i := 0; i < len(units); i++ {
		u := units[i]
		switch {
		case u >= 0xD800 && u <= 0xDBFF:
			if i+1 >= len(units) || units[i+1] < 0xDC00 || units[i+1] > 0xDFFF {
				return false
			}
			i++
		case u >= 0xDC00 && u <= 0xDFFF:
			return false
		}
	}
	return true
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
