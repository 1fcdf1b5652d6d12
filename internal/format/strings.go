package format

import "strings"

// Wrap splits text into lines of at most width runes. Words are packed
// greedily and separated by single spaces. A word longer than width first
// fills what is left of the current line and then continues in width-sized
// pieces. Empty or all-whitespace text yields no lines. A width below 1 is
// treated as 1.
func Wrap(text string, width int) []string {
	if width < 1 {
		width = 1
	}

	var lines []string
	var line []rune
	flush := func() {
		if len(line) > 0 {
			lines = append(lines, string(line))
			line = nil
		}
	}

	for _, word := range strings.Fields(text) {
		w := []rune(word)
		sep := 0
		if len(line) > 0 {
			sep = 1
		}

		if len(line)+sep+len(w) <= width {
			if sep == 1 {
				line = append(line, ' ')
			}
			line = append(line, w...)
			continue
		}

		if len(w) <= width {
			flush()
			line = append(line, w...)
			continue
		}

		if space := width - len(line) - sep; space > 0 {
			if sep == 1 {
				line = append(line, ' ')
			}
			line = append(line, w[:space]...)
			w = w[space:]
		}
		flush()
		for len(w) > width {
			lines = append(lines, string(w[:width]))
			w = w[width:]
		}
		line = append(line, w...)
	}
	flush()

	return lines
}

// UniqueStrings returns a deduplicated slice of strings with blanks removed.
// The order of first occurrence is preserved.
func UniqueStrings(input []string) []string {
	seen := make(map[string]bool)
	var result []string
	for _, s := range input {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		result = append(result, s)
	}
	return result
}
