package pdf

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SanitizeName folds diacritics to their base letters and replaces every
// run of characters other than ASCII letters and digits with an underscore.
func SanitizeName(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	pendingSep := false
	for _, r := range folded {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			pendingSep = false
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// Filename builds the download name of a generated document, such as
// "Greg_Dukes_AI_Solutions_Architect_Resume.pdf".
func Filename(name, role, suffix string) string {
	parts := make([]string, 0, 3)
	if n := SanitizeName(name); n != "" {
		parts = append(parts, n)
	} else {
		parts = append(parts, "Candidate")
	}
	if r := SanitizeName(role); r != "" {
		parts = append(parts, r)
	}
	if s := SanitizeName(suffix); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, "_") + ".pdf"
}
