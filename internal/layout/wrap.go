package layout

import "strings"

// Wrap breaks text into lines no wider than maxWidth geometry units.
//
// Lines break only between words. Newlines in text always start a new line
// and blank lines between paragraphs are kept as empty strings. A single
// word wider than maxWidth gets a line of its own. Text that is empty or
// only whitespace yields no lines.
func Wrap(m Measurer, text string, font Font, maxWidth, unitsPerPoint float64) []string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	if text == "" {
		return nil
	}

	width := func(s string) float64 {
		return m.TextWidth(s, font) * unitsPerPoint
	}

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		current := words[0]
		for _, w := range words[1:] {
			candidate := current + " " + w
			if width(candidate) <= maxWidth {
				current = candidate
				continue
			}
			lines = append(lines, current)
			current = w
		}
		lines = append(lines, current)
	}
	return lines
}
