// Package idlist reads newline-delimited catalog identifiers.
package idlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// maxLineSize bounds a single input line.
const maxLineSize = 1024 * 1024

// Load reads identifiers from the file at path
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open identifier file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close identifier file")
		}
	}()

	ids, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read identifier file %s: %w", path, err)
	}
	return ids, nil
}

// Read returns the trimmed, non-empty lines of r in their original order.
func Read(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var ids []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		ids = append(ids, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}
