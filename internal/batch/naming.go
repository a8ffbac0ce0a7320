package batch

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// codeLength is the number of trailing characters used as file name code.
const codeLength = 4

// DeriveCode returns the identifier used in output file names: the last
// four characters of url after trailing '/', '#' and '!' are removed,
// upper-cased. Shorter URLs use all of their characters.
func DeriveCode(url string) string {
	r := []rune(strings.TrimRight(url, "/#!"))
	if len(r) > codeLength {
		r = r[len(r)-codeLength:]
	}
	// Casers carry state and must not be shared between workers.
	return cases.Upper(language.Und).String(string(r))
}

// FileName returns the output file name for code at size pixels. Characters
// that cannot appear in a file name are replaced with '_'.
func FileName(code string, size int) string {
	return fmt.Sprintf("%s_%dx%d.png", sanitize(code), size, size)
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || strings.ContainsRune(`/\:*?"<>|`, r) {
			return '_'
		}
		return r
	}, s)
}
