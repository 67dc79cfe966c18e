package shellcheck

import "strings"

// IsShellLanguage reports whether an editor language identifier names a shell script
// dialect shellcheck understands.
func IsShellLanguage(lang string) bool {
	lang = strings.ToLower(lang)
	switch lang {
	case "bash", "dash", "ksh":
		return true
	}
	return strings.HasPrefix(lang, "sh")
}
