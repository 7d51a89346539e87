package utils

import "strings"

// GenUsername generates a random username such as user-ab12cd.
// Usernames are unique by construction with overwhelming probability;
// the database unique index is the backstop.
func GenUsername() string {
	suffix, err := randomHex(4)
	if err != nil {
		// crypto/rand failing means the process is in serious trouble;
		// an empty suffix still produces a syntactically valid name and
		// the unique index catches any collision.
		suffix = "00000000"
	}
	return "user-" + suffix
}

// GenSlug derives a URL slug from a title: lower-cased, non-alphanumeric
// runs collapsed to single dashes, plus a random suffix so two posts with
// the same title get distinct slugs (e.g. my-first-post-3f9a1c).
func GenSlug(title string) string {
	var b strings.Builder
	lastDash := true // suppress a leading dash
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	suffix, err := randomHex(3)
	if err != nil {
		suffix = "000000"
	}
	if slug == "" {
		return suffix
	}
	return slug + "-" + suffix
}
