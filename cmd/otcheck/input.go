package main

import (
	"io"
	"os"
	"strings"
)

// readArg resolves a text argument: "-" reads stdin, "@path" reads a file,
// anything else is taken literally.
func readArg(value string, stdin io.Reader) ([]byte, error) {
	switch {
	case value == "-":
		return io.ReadAll(stdin)
	case strings.HasPrefix(value, "@"):
		return os.ReadFile(strings.TrimPrefix(value, "@"))
	default:
		return []byte(value), nil
	}
}
