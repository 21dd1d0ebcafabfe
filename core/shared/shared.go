package shared

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

func ToTitle(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

func LowerFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}

// BaseName drops a trailing type argument list, "[...]" or "<...>".
func BaseName(name string) string {
	if i := strings.IndexAny(name, "[<"); i >= 0 {
		return name[:i]
	}
	return name
}

// SimpleName returns the last dot-separated segment of a qualified name,
// without type arguments: "prefs.JSONAdapter[geo.Point]" gives "JSONAdapter".
func SimpleName(qualified string) string {
	base := BaseName(qualified)
	if i := strings.LastIndex(base, "."); i >= 0 {
		return base[i+1:]
	}
	return base
}

// SnakeCase turns "UserPrefs" into "user_prefs" for file names.
func SnakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
