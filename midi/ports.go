package midi

import "strings"

// PortFilter chooses which input port to listen to
type PortFilter struct {
	// Preferred name substrings, earlier entries win
	Preferred []string
	// Excluded name substrings are never connected
	Excluded []string
}

// Allowed reports whether name is not excluded
func (f PortFilter) Allowed(name string) bool {
	for _, pat := range f.Excluded {
		if containsCI(name, pat) {
			return false
		}
	}
	return true
}

// Pick returns the port to connect to. A preferred match wins; with no
// preferences configured, or none matching, the first allowed port is used.
func (f PortFilter) Pick(names []string) (string, bool) {
	var allowed []string
	for _, n := range names {
		if f.Allowed(n) {
			allowed = append(allowed, n)
		}
	}
	for _, pat := range f.Preferred {
		for _, name := range allowed {
			if containsCI(name, pat) {
				return name, true
			}
		}
	}
	if len(allowed) == 0 {
		return "", false
	}
	return allowed[0], true
}

func containsCI(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
