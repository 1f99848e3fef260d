// AngelaMos | 2026
// storage_test.go

package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Minimal valid PNG header plus IHDR chunk start, enough for sniffing.
var pngBytes = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
}

func newTestStore(t *testing.T, maxBytes int64) *Store {
	t.Helper()

	s, err := New(t.TempDir(), maxBytes)
	require.NoError(t, err)
	return s
}

func TestSaveImageAndOpen(t *testing.T) {
	s := newTestStore(t, 1<<20)

	relPath, err := s.SaveImage("avatars/users/1", bytes.NewReader(pngBytes))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(relPath, filepath.Join("avatars", "users", "1")))
	assert.True(t, strings.HasSuffix(relPath, ".png"))

	f, err := s.Open(relPath)
	require.NoError(t, err)
	defer f.Close()

	stat, err := f.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(len(pngBytes)), stat.Size())
}

func TestSaveImageRejectsNonImage(t *testing.T) {
	s := newTestStore(t, 1<<20)

	_, err := s.SaveImage("avatars", strings.NewReader("plain text payload"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestSaveFileAcceptsArbitraryContent(t *testing.T) {
	s := newTestStore(t, 1<<20)

	relPath, err := s.SaveFile("reports/7", strings.NewReader(`{"rows": 42}`))
	require.NoError(t, err)
	assert.NotEmpty(t, relPath)
}

func TestSaveRejectsOversizedUpload(t *testing.T) {
	s := newTestStore(t, 8)

	_, err := s.SaveFile("reports", strings.NewReader("this payload is too big"))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestSaveRejectsPathEscape(t *testing.T) {
	s := newTestStore(t, 1<<20)

	_, err := s.SaveFile("../outside", strings.NewReader("data"))
	assert.Error(t, err)
}

func TestRemoveMissingFileIsNoError(t *testing.T) {
	s := newTestStore(t, 1<<20)

	assert.NoError(t, s.Remove("reports/never-written.bin"))
}

func TestRemoveDeletesFile(t *testing.T) {
	s := newTestStore(t, 1<<20)

	relPath, err := s.SaveFile("reports", strings.NewReader("payload"))
	require.NoError(t, err)

	require.NoError(t, s.Remove(relPath))

	_, err = s.Open(relPath)
	assert.True(t, os.IsNotExist(errUnwrapAll(err)))
}

func errUnwrapAll(err error) error {
	for {
		type unwrapper interface{ Unwrap() error }
		u, ok := err.(unwrapper)
		if !ok {
			return err
		}
		err = u.Unwrap()
	}
}
