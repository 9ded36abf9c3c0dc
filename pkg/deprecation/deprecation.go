package deprecation

var (
	// deprecatedKeys maps old config keys to their replacement, if any
	deprecatedKeys = map[string]string{
		"api_url": "base_url",
		"page":    "",
	}
)

// Deprecated returns true if the key is deprecated
func Deprecated(k string) bool {
	_, ok := deprecatedKeys[k]
	return ok
}

// Replacement returns the key that supersedes a deprecated key, or "" if there is none
func Replacement(k string) string {
	return deprecatedKeys[k]
}
