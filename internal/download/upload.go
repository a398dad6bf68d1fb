package download

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Upload is a locally persisted user-provided media file.
type Upload struct {
	AbsPath   string
	PublicURL string
	FileName  string
}

// SaveUpload persists an uploaded media stream under
// <dir>/uploads/<owner>/ with a fresh uuid name, keeping only the
// original extension. The uuid prevents collisions and strips any
// caller-controlled path content from the stored name.
func (d *Downloader) SaveUpload(owner, originalName string, r io.Reader) (*Upload, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = ".mp4"
	}
	name := uuid.NewString() + ext

	dir := filepath.Join(d.dir, "uploads", owner)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	dst := filepath.Join(dir, name)

	f, err := os.Create(dst)
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return nil, fmt.Errorf("write upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return nil, fmt.Errorf("close upload file: %w", err)
	}

	d.logger.Info("upload saved", "owner", owner, "file", name)
	return &Upload{
		AbsPath:   dst,
		PublicURL: path.Join("/uploads/videos", owner, name),
		FileName:  name,
	}, nil
}
