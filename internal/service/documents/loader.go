package documents

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/sandevgo/ragchat/internal/core"
)

// LoadFile reads a document from disk for upload. The content type is sniffed
// from the bytes; markdown and plain text sniff as text/plain and keep it.
func LoadFile(path string) (core.UploadFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return core.UploadFile{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return core.UploadFile{}, fmt.Errorf("%w: %s is a directory", core.ErrValidation, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return core.UploadFile{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return NewUploadFile(filepath.Base(path), data), nil
}

// NewUploadFile wraps in-memory bytes, such as a chat attachment.
func NewUploadFile(name string, data []byte) core.UploadFile {
	return core.UploadFile{
		Name:        name,
		ContentType: DetectContentType(data),
		Data:        data,
	}
}

func DetectContentType(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	mt := mimetype.Detect(data)
	// drop parameters such as charset, the server only routes on the type
	ct, _, _ := strings.Cut(mt.String(), ";")
	return ct
}

// HasExtension reports whether path ends in one of exts, case-insensitively.
// An empty list accepts everything.
func HasExtension(path string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" && !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if ext == e {
			return true
		}
	}
	return false
}
