package mhtml

import "strings"

// Resolve resolves a relative reference against a base content location and
// returns the absolute location used as a Media lookup key. References that
// already carry an http(s) scheme pass through unchanged. Resolution is a
// plain segment walk: "." is a no-op, ".." pops one ancestor, anything else
// is appended. No percent-decoding or further normalization happens here.
func Resolve(base, relative string) string {
	if strings.HasPrefix(relative, "http://") || strings.HasPrefix(relative, "https://") {
		return relative
	}

	stack := strings.Split(base, "/")
	stack = stack[:len(stack)-1] // drop the file segment

	for _, segment := range strings.Split(relative, "/") {
		switch segment {
		case ".":
		case "..":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			stack = append(stack, segment)
		}
	}
	return strings.Join(stack, "/")
}
