// Package console holds the small interactive prompts used by the
// publish and reset workflows. Prompts read and write through injected
// streams so commands can run them against buffers in tests.
package console

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/bundlegen/bundlegen/internal/settings"
)

// Confirm prints the prompt and reads one line. Any truthy answer
// (y, yes, 1, true) confirms; everything else, including EOF, declines.
func Confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N] ", prompt)
	line, err := readLine(in)
	if err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return settings.Truthy(line), nil
}

// Ask prints the prompt and returns the trimmed answer line.
func Ask(in io.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprintf(out, "%s ", prompt)
	return readLine(in)
}

func readLine(in io.Reader) (string, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
