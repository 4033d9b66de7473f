package app

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// PickFile prompts for a target path on a terminal. It mirrors the
// contract of the GUI dialog: a path on success, a human-readable
// reason otherwise.
func PickFile(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "File to erase: ")

	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("no file was selected")
	}

	path := strings.TrimSpace(line)
	if path == "" {
		return "", fmt.Errorf("no file was selected")
	}
	if !utf8.ValidString(path) {
		return "", fmt.Errorf("file path is not valid UTF-8")
	}

	return path, nil
}
