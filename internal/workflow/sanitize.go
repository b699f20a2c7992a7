package workflow

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// SafeBaseName derives a filesystem-safe base filename for the Splitter.
// Every character outside [A-Za-z0-9_-] becomes '_'; the result is capped
// at 100 characters. Case is preserved so repository filenames survive a
// round trip recognizably.
func SafeBaseName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return truncate(b.String(), 100)
}

// Slug normalizes a derived name for the Renamer: NFC-normalized,
// lowercased, non [a-z0-9_-] replaced with '_', runs of '_' collapsed,
// leading/trailing '_' trimmed, capped at 80 characters.
//
// Slug is idempotent: Slug(Slug(s)) == Slug(s).
func Slug(s string) string {
	s = strings.ToLower(norm.NFC.String(s))

	var b strings.Builder
	b.Grow(len(s))
	lastUnderscore := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
		}
		lastUnderscore = true
	}
	// Trim again after truncation so a cut never leaves a trailing '_',
	// which would break idempotency.
	out := truncate(strings.Trim(b.String(), "_"), 80)
	return strings.Trim(out, "_")
}

// LabelDir converts a semantic label into a directory name:
// spaces become '_', '&' becomes "and", '/' becomes '_'.
func LabelDir(label string) string {
	r := strings.NewReplacer(" ", "_", "&", "and", "/", "_")
	return r.Replace(label)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
