// Package localfs implements the AttachmentStore port on the local filesystem.
package localfs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/ericfisherdev/signdispatch/internal/domain/model"
	"github.com/ericfisherdev/signdispatch/internal/domain/port/driven"
)

// defaultMIMEType is used when the send plan's AttachmentType is blank or unknown.
const defaultMIMEType = "application/pdf"

// samplePDF is the placeholder written by EnsureSampleDocuments.
var samplePDF = []byte("%PDF-1.4\n% Dummy PDF content\n%%EOF")

var _ driven.AttachmentStore = (*AttachmentStore)(nil)

// AttachmentStore reads send-plan attachments from disk. Relative paths are
// resolved against baseDir.
type AttachmentStore struct {
	baseDir string
}

// NewAttachmentStore creates an AttachmentStore rooted at baseDir. An empty
// baseDir means the working directory.
func NewAttachmentStore(baseDir string) *AttachmentStore {
	return &AttachmentStore{baseDir: baseDir}
}

// ReadAttachment loads the file named by plan.AttachmentPath. It returns
// driven.ErrAttachmentNotFound when the path is blank, missing or not a
// regular file, and driven.ErrAttachmentEmpty when the file has zero size.
func (s *AttachmentStore) ReadAttachment(_ context.Context, plan model.SendPlan) (*model.Attachment, error) {
	if strings.TrimSpace(plan.AttachmentPath) == "" {
		return nil, fmt.Errorf("%w: no attachment path in send plan", driven.ErrAttachmentNotFound)
	}

	path := plan.AttachmentPath
	if !filepath.IsAbs(path) && s.baseDir != "" {
		path = filepath.Join(s.baseDir, path)
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", driven.ErrAttachmentNotFound, plan.AttachmentPath)
	}
	if err != nil {
		return nil, fmt.Errorf("stat attachment %s: %w", plan.AttachmentPath, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", driven.ErrAttachmentNotFound, plan.AttachmentPath)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("%w: %s", driven.ErrAttachmentEmpty, plan.AttachmentPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read attachment %s: %w", plan.AttachmentPath, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", driven.ErrAttachmentEmpty, plan.AttachmentPath)
	}

	return &model.Attachment{
		Path:     plan.AttachmentPath,
		Name:     filepath.Base(path),
		MIMEType: mimeTypeFor(plan.AttachmentType, path),
		Data:     data,
	}, nil
}

// mimeTypeFor resolves the content type from the declared attachment type
// ("pdf", ".docx", "application/pdf"), then from the file extension.
func mimeTypeFor(attachmentType, path string) string {
	t := strings.ToLower(strings.TrimSpace(attachmentType))
	if strings.Contains(t, "/") {
		return t
	}
	if t != "" {
		if !strings.HasPrefix(t, ".") {
			t = "." + t
		}
		if mt := mime.TypeByExtension(t); mt != "" {
			return mt
		}
	}
	if mt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); mt != "" {
		return mt
	}
	return defaultMIMEType
}

// EnsureSampleDocuments creates dir and the placeholder files sample1.pdf
// through sampleN.pdf when they are missing. It returns the files it created.
func EnsureSampleDocuments(dir string, n int) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create files dir %s: %w", dir, err)
	}

	var created []string
	for i := 1; i <= n; i++ {
		path := filepath.Join(dir, fmt.Sprintf("sample%d.pdf", i))
		if _, err := os.Stat(path); err == nil {
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			return created, fmt.Errorf("stat %s: %w", path, err)
		}
		if err := os.WriteFile(path, samplePDF, 0o644); err != nil {
			return created, fmt.Errorf("write %s: %w", path, err)
		}
		created = append(created, path)
	}
	return created, nil
}
