package sanitize

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Anything outside this set becomes "_" in stored file names.
var reUnsafe = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Runs of separators collapse to one.
var reRepeat = regexp.MustCompile(`[_.-]{2,}`)

const maxNameLen = 100

// Filename reduces a client-supplied name to a safe single path segment,
// keeping the extension. Empty results become "file".
func Filename(name string) string {
	// Browsers on Windows may send the full path
	name = strings.ReplaceAll(name, `\`, "/")
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == "/" {
		name = ""
	}

	ext := strings.ToLower(filepath.Ext(name))
	base := strings.TrimSuffix(name, filepath.Ext(name))
	ext = reUnsafe.ReplaceAllString(ext, "")
	if len(ext) < 2 {
		ext = ""
	}

	base = reUnsafe.ReplaceAllString(base, "_")
	base = reRepeat.ReplaceAllStringFunc(base, func(m string) string { return m[:1] })
	base = strings.Trim(base, "._-")
	if base == "" {
		base = "file"
	}
	if len(base)+len(ext) > maxNameLen {
		base = base[:maxNameLen-len(ext)]
	}
	return base + ext
}

// Summary cuts s to at most max runes on a word boundary for listings.
func Summary(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	i := max
	for i > 0 && r[i] != ' ' {
		i--
	}
	if i <= 0 {
		i = max
	}
	return strings.TrimRight(string(r[:i]), " ") + "…"
}
