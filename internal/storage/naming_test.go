package storage

import (
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var filenamePattern = regexp.MustCompile(`^\d{13}-[0-9a-f]{16}\.[a-z0-9]+$`)

func TestNewFilename_Format(t *testing.T) {
	name, err := newFilename("Holiday Photo.PNG")
	require.NoError(t, err)
	assert.Regexp(t, filenamePattern, name)
	assert.True(t, len(name) > 4 && name[len(name)-4:] == ".png", name)
}

func TestExtension(t *testing.T) {
	tests := []struct {
		original string
		want     string
	}{
		{"logo.png", ".png"},
		{"LOGO.JPEG", ".jpeg"},
		{"archive.tar.webp", ".webp"},
		{"no-extension", ".jpg"},
		{"", ".jpg"},
		{"trailing.", ".jpg"},
		{"weird.p%g", ".jpg"},
		{"long.abcdefghijklm", ".jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.original, func(t *testing.T) {
			assert.Equal(t, tt.want, extension(tt.original))
		})
	}
}

func TestNewFilename_UniqueUnderConcurrency(t *testing.T) {
	const n = 200
	names := make(chan string, n)

	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name, err := newFilename("a.png")
			if err == nil {
				names <- name
			}
		}()
	}
	wg.Wait()
	close(names)

	seen := make(map[string]bool)
	for name := range names {
		assert.False(t, seen[name], "duplicate filename %s", name)
		seen[name] = true
	}
	assert.Len(t, seen, n)
}
