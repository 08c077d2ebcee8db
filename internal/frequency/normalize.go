// Package frequency turns note tokens into frequencies in Hz.
package frequency

import "strings"

// ChordDelimiter joins the pitch labels of a chord token.
const ChordDelimiter = '|'

// Normalize drops every character that is not a note letter (A-G), an
// octave digit or the chord delimiter.
func Normalize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, c := range s {
		switch {
		case c >= 'A' && c <= 'G', c >= '0' && c <= '9', c == ChordDelimiter:
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

// SplitChord splits a chord token into its pitch labels. Empty segments are
// skipped, so "" yields no labels and "C3|" yields ["C3"].
func SplitChord(s string) []string {
	labels := []string{}
	for s != "" {
		i := strings.IndexByte(s, ChordDelimiter)
		if i < 0 {
			labels = append(labels, s)
			break
		}
		if i > 0 {
			labels = append(labels, s[:i])
		}
		s = s[i+1:]
	}
	return labels
}
