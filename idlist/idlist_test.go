package idlist

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "ids.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_DropsBlankLines(t *testing.T) {
	path := writeTestFile(t, "tt0111161\n\ntt0068646\n")

	ids, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, []string{"tt0111161", "tt0068646"}, ids)
}

func TestLoad_MissingFile(t *testing.T) {
	ids, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
	assert.Nil(t, ids)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRead(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty input", "", nil},
		{"only whitespace", "  \n\t\n\n", nil},
		{"trims surrounding whitespace", "  tt0087182 \n\ttt0111161\t\n", []string{"tt0087182", "tt0111161"}},
		{"crlf line endings", "tt0087182\r\n\r\ntt0111161\r\n", []string{"tt0087182", "tt0111161"}},
		{"no trailing newline", "tt0087182\ntt0111161", []string{"tt0087182", "tt0111161"}},
		{"keeps duplicates and order", "b\na\nb\n", []string{"b", "a", "b"}},
		{"no format validation", "not-an-id\n", []string{"not-an-id"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ids, err := Read(strings.NewReader(tc.input))
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, ids)
		})
	}
}

func TestRead_LongLine(t *testing.T) {
	long := strings.Repeat("x", 200*1024)

	ids, err := Read(strings.NewReader("tt1\n" + long + "\ntt2\n"))
	require.NoError(t, err)
	assert.Len(t, ids, 3)
	assert.Equal(t, long, ids[1])
}
