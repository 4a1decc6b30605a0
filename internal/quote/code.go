package quote

import (
	"strings"
	"unicode/utf8"
)

// Exchange prefixes used by the quote feed.
const (
	PrefixShanghai = "sh"
	PrefixShenzhen = "sz"
)

// DeriveCode turns a domestic six-character security code into a quote
// code: codes starting with 6 trade in Shanghai, codes starting with 0 or 3
// in Shenzhen. Anything else is not eligible for sync and yields "".
func DeriveCode(code string) string {
	if utf8.RuneCountInString(code) != 6 {
		return ""
	}
	switch {
	case strings.HasPrefix(code, "6"):
		return PrefixShanghai + code
	case strings.HasPrefix(code, "0"), strings.HasPrefix(code, "3"):
		return PrefixShenzhen + code
	}
	return ""
}
