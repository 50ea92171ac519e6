package discovery

import "path/filepath"

// MatchMask reports whether the base name of path matches one of masks.
// Masks use filepath.Match syntax, so a negated class is written [^...].
// Malformed masks never match.
func MatchMask(path string, masks []string) bool {
	name := filepath.Base(path)
	for _, mask := range masks {
		if ok, err := filepath.Match(mask, name); err == nil && ok {
			return true
		}
	}
	return false
}
