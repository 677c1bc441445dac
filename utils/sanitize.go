package utils

import "github.com/microcosm-cc/bluemonday"

var (
	bodyPolicy  = bluemonday.UGCPolicy()
	plainPolicy = bluemonday.StrictPolicy()
)

// Sanitize cleans rich question/answer/comment bodies, keeping user-generated
// markup while stripping anything executable.
func Sanitize(input string) string {
	return bodyPolicy.Sanitize(input)
}

// SanitizePlain strips all markup. Used for titles and tags, which are
// rendered as plain text everywhere.
func SanitizePlain(input string) string {
	return plainPolicy.Sanitize(input)
}
