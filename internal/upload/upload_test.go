package upload

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shahmeerabdul/GIKomplain/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSave(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir, "/uploads/", 16)

	f, err := s.Save(context.Background(), "../../etc/photo.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "photo.png", f.Name)
	assert.Equal(t, int64(9), f.Size)
	assert.True(t, strings.HasPrefix(f.URL, "/uploads/"))
	assert.True(t, strings.HasSuffix(f.URL, "-photo.png"))

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(f.URL, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestSave_UniqueNames(t *testing.T) {
	s := NewStore(t.TempDir(), "/uploads", 0)
	a, err := s.Save(context.Background(), "same.txt", strings.NewReader("a"))
	require.NoError(t, err)
	b, err := s.Save(context.Background(), "same.txt", strings.NewReader("b"))
	require.NoError(t, err)
	assert.NotEqual(t, a.URL, b.URL)
}

func TestSave_TooLargeLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir, "/uploads", 4)

	_, err := s.Save(context.Background(), "big.bin", strings.NewReader("12345"))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCleanName(t *testing.T) {
	cases := map[string]string{
		"report.pdf":          "report.pdf",
		`C:\Users\me\a b.jpg`: "a b.jpg",
		"../":                 "",
		"  ":                  "",
		"x\x00y.txt":          "xy.txt",
	}
	for in, want := range cases {
		assert.Equal(t, want, cleanName(in), in)
	}
}
