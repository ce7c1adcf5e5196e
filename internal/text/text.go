// Package text normalizes the strings carried by decoded text fragments.
package text

import (
	"strings"
	"unicode"
)

// Normalize collapses runs of blanks into one space, drops carriage returns and
// empty lines, and trims trailing blanks.
func Normalize(input string) string {
	if input == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(input))
	lastSpace, lastWasNewline := true, false
	for _, c := range input {
		if c == '\r' {
			continue
		}
		if c == '\n' {
			if b.Len() > 0 {
				if s := b.String(); s[len(s)-1] == ' ' {
					b.Reset()
					b.WriteString(s[:len(s)-1])
				}
			}
			if !lastWasNewline && b.Len() > 0 {
				b.WriteByte('\n')
			}
			lastSpace, lastWasNewline = true, true
			continue
		}
		lastWasNewline = false
		if unicode.IsSpace(c) {
			if !lastSpace && b.Len() > 0 {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(c)
		lastSpace = false
	}
	return strings.TrimRight(b.String(), " \n")
}

// JoinHyphenated removes a line-break hyphen together with its newline.
func JoinHyphenated(s string) string { return strings.ReplaceAll(s, "-\n", "") }

// Repair drops invalid UTF-8 and replacement characters left by broken font
// encodings.
func Repair(s string) string {
	s = strings.ToValidUTF8(s, "")
	return strings.ReplaceAll(s, "�", "")
}
