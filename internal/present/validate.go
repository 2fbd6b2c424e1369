package present

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MaxKeywordLength bounds a trimmed keyword, in characters.
	MaxKeywordLength = 100
	// MinPasswordLength is the shortest accepted account password.
	MinPasswordLength = 6
)

var naverIDPattern = regexp.MustCompile(`^[A-Za-z0-9_]{4,20}$`)

// ValidateKeyword reports whether the trimmed keyword has 1-100 characters.
func ValidateKeyword(keyword string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(keyword))
	return n > 0 && n <= MaxKeywordLength
}

// ValidateNaverID reports whether id is 4-20 ASCII letters, digits or underscores.
func ValidateNaverID(id string) bool {
	return naverIDPattern.MatchString(id)
}

// ValidatePassword reports whether password is long enough.
func ValidatePassword(password string) bool {
	return utf8.RuneCountInString(password) >= MinPasswordLength
}
