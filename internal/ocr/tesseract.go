// Package ocr reads bookmaker screenshots with the tesseract command line tool.
package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

var ErrEmptyImage = errors.New("empty image")

// Tesseract pipes an image through the tesseract binary and returns the
// recognised text. Lang defaults to "por+eng", Timeout to 30s.
type Tesseract struct {
	Path    string
	Lang    string
	Timeout time.Duration
}

func New(path string) *Tesseract {
	if path == "" {
		path = "tesseract"
	}
	return &Tesseract{Path: path, Lang: "por+eng", Timeout: 30 * time.Second}
}

func (t *Tesseract) Recognize(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", ErrEmptyImage
	}
	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	args := []string{"stdin", "stdout"}
	if t.Lang != "" {
		args = append(args, "-l", t.Lang)
	}
	// psm 6: a single uniform block of text, which suits odds tables
	args = append(args, "--psm", "6")

	cmd := exec.CommandContext(ctx, t.Path, args...)
	cmd.Stdin = bytes.NewReader(image)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > 200 {
			msg = msg[:200]
		}
		if msg != "" {
			return "", fmt.Errorf("tesseract: %w: %s", err, msg)
		}
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Available reports whether the binary can be found.
func (t *Tesseract) Available() bool {
	_, err := exec.LookPath(t.Path)
	return err == nil
}
