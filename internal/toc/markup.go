package toc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
)

// ErrNoMarkup is returned when a script holds no innerHTML assignment.
var ErrNoMarkup = errors.New("no toc markup found in script")

var innerHTMLAssign = regexp.MustCompile(`innerHTML\s*=\s*'((?:[^'\\]|\\.)*)'`)

// LoadMarkup reads TOC markup from path. A ".js" file is taken to be an
// mdBook toc.js; the markup is the string literal it assigns to innerHTML.
// Any other file is read as markup.
func LoadMarkup(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading toc %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".js") {
		markup, err := ExtractMarkup(string(data))
		if err != nil {
			return "", fmt.Errorf("%s: %w", path, err)
		}
		return markup, nil
	}
	return strings.TrimSpace(string(data)), nil
}

// ExtractMarkup returns the markup assigned to innerHTML by a toc script.
func ExtractMarkup(script string) (string, error) {
	m := innerHTMLAssign.FindStringSubmatch(script)
	if m == nil {
		return "", ErrNoMarkup
	}
	return unescapeJS(m[1])
}

// unescapeJS decodes the escapes allowed in a single-quoted JS literal.
func unescapeJS(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch e := s[i]; e {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case 'x', 'u':
			width := 2
			if e == 'u' {
				width = 4
			}
			if i+width >= len(s) {
				return "", fmt.Errorf("truncated \\%c escape", e)
			}
			r, err := strconv.ParseUint(s[i+1:i+1+width], 16, 32)
			if err != nil {
				return "", fmt.Errorf("bad \\%c escape: %w", e, err)
			}
			i += width
			// a surrogate pair spells one rune across two \u escapes
			if e == 'u' && utf16.IsSurrogate(rune(r)) && i+6 < len(s) && s[i+1] == '\\' && s[i+2] == 'u' {
				if lo, err := strconv.ParseUint(s[i+3:i+7], 16, 32); err == nil {
					if pair := utf16.DecodeRune(rune(r), rune(lo)); pair != unicode.ReplacementChar {
						b.WriteRune(pair)
						i += 6
						continue
					}
				}
			}
			b.WriteRune(rune(r))
		default:
			// \' \" \\ \/ and unknown escapes stand for the character itself
			b.WriteByte(e)
		}
	}
	return b.String(), nil
}
