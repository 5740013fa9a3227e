package storage

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStoreRoundTrip(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	n, err := s.Put("courses/c1/materials/m1.txt", strings.NewReader("hola"))
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	rc, err := s.Get("courses/c1/materials/m1.txt")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hola", string(data))

	require.NoError(t, s.Delete("courses/c1/materials/m1.txt"))
	_, err = s.Get("courses/c1/materials/m1.txt")
	assert.Error(t, err)
}

func TestFSStoreAbs(t *testing.T) {
	base := t.TempDir()
	s, err := NewFSStore(base)
	require.NoError(t, err)

	p, err := s.Abs("courses/c1/exams/e1/exam.pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p, base))
	// Abs pre-creates the parent so callers can write there directly.
	require.NoError(t, os.WriteFile(p, []byte("%PDF"), 0o644))
}

func TestFSStoreRejectsEscapingKeys(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"../outside.txt", "a/../../b", ".."} {
		_, err := s.Put(key, strings.NewReader("x"))
		assert.Error(t, err, key)
		_, err = s.Abs(key)
		assert.Error(t, err, key)
	}
}
