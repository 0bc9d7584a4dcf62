package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// readInput reads raw content from a file path, or from stdin when source is "-".
func readInput(source string, stdin io.Reader) ([]byte, error) {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return nil, fmt.Errorf("empty input source")
	}

	var r io.Reader
	if trimmed == "-" {
		if stdin != nil {
			r = stdin
		} else {
			r = os.Stdin
		}
	} else {
		file, err := os.Open(trimmed)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", trimmed, err)
		}
		defer file.Close()
		r = file
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}

// readInputSource is readInput with surrounding whitespace removed.
func readInputSource(source string, stdin io.Reader) (string, error) {
	data, err := readInput(source, stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// sourceArg picks the input for commands taking an optional <file|-> argument:
// the argument when given, stdin when it is piped.
func sourceArg(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if inputHasData(stdin) {
		return "-", nil
	}
	return "", fmt.Errorf("no input: pass a file path or pipe content on stdin")
}

func inputHasData(r io.Reader) bool {
	if r == nil {
		r = os.Stdin
	}
	if file, ok := r.(*os.File); ok {
		stat, err := file.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) == 0
	}
	return true
}
