package ocr

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTesseract writes a shell script standing in for the binary.
func fakeTesseract(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	path := filepath.Join(t.TempDir(), "tesseract")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestRecognize(t *testing.T) {
	// echo stdin back so the test can check the image was piped through
	tess := New(fakeTesseract(t, "cat"))
	got, err := tess.Recognize(context.Background(), []byte("Team Spirit 1.85\n"))
	require.NoError(t, err)
	assert.Equal(t, "Team Spirit 1.85", got)
	assert.True(t, tess.Available())
}

func TestRecognize_Args(t *testing.T) {
	tess := New(fakeTesseract(t, `echo "$@"`))
	got, err := tess.Recognize(context.Background(), []byte{1})
	require.NoError(t, err)
	assert.Equal(t, "stdin stdout -l por+eng --psm 6", got)
}

func TestRecognize_Failure(t *testing.T) {
	tess := New(fakeTesseract(t, "echo 'Error opening data file' >&2; exit 1"))
	_, err := tess.Recognize(context.Background(), []byte{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Error opening data file")

	_, err = tess.Recognize(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyImage)

	missing := New(filepath.Join(t.TempDir(), "nope"))
	assert.False(t, missing.Available())
	_, err = missing.Recognize(context.Background(), []byte{1})
	assert.Error(t, err)
}
