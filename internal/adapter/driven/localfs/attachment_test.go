package localfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/signdispatch/internal/domain/model"
	"github.com/ericfisherdev/signdispatch/internal/domain/port/driven"
)

func TestReadAttachment_Success(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "contract.pdf"), []byte("%PDF-1.7"), 0o644))
	store := NewAttachmentStore(dir)

	doc, err := store.ReadAttachment(context.Background(), model.SendPlan{
		AttachmentType: "pdf",
		AttachmentPath: "contract.pdf",
	})

	require.NoError(t, err)
	assert.Equal(t, "contract.pdf", doc.Path)
	assert.Equal(t, "contract.pdf", doc.Name)
	assert.Equal(t, "application/pdf", doc.MIMEType)
	assert.Equal(t, []byte("%PDF-1.7"), doc.Data)
}

func TestReadAttachment_AbsolutePathIgnoresBaseDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.pdf")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	store := NewAttachmentStore("/nonexistent")

	doc, err := store.ReadAttachment(context.Background(), model.SendPlan{AttachmentPath: path})

	require.NoError(t, err)
	assert.Equal(t, "a.pdf", doc.Name)
}

func TestReadAttachment_Missing(t *testing.T) {
	store := NewAttachmentStore(t.TempDir())

	_, err := store.ReadAttachment(context.Background(), model.SendPlan{AttachmentPath: "nope.pdf"})

	require.ErrorIs(t, err, driven.ErrAttachmentNotFound)
}

func TestReadAttachment_BlankPath(t *testing.T) {
	store := NewAttachmentStore(t.TempDir())

	_, err := store.ReadAttachment(context.Background(), model.SendPlan{AttachmentPath: "  "})

	require.ErrorIs(t, err, driven.ErrAttachmentNotFound)
}

func TestReadAttachment_Directory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	store := NewAttachmentStore(dir)

	_, err := store.ReadAttachment(context.Background(), model.SendPlan{AttachmentPath: "sub"})

	require.ErrorIs(t, err, driven.ErrAttachmentNotFound)
}

func TestReadAttachment_Empty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.pdf"), nil, 0o644))
	store := NewAttachmentStore(dir)

	_, err := store.ReadAttachment(context.Background(), model.SendPlan{AttachmentPath: "empty.pdf"})

	require.ErrorIs(t, err, driven.ErrAttachmentEmpty)
}

func TestMIMETypeFor(t *testing.T) {
	tests := []struct {
		attachmentType string
		path           string
		want           string
	}{
		{"pdf", "x.bin", "application/pdf"},
		{".PDF", "x", "application/pdf"},
		{"application/msword", "x", "application/msword"},
		{"", "x.pdf", "application/pdf"},
		{"", "x", defaultMIMEType},
		{"unknown-type", "x", defaultMIMEType},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, mimeTypeFor(tt.attachmentType, tt.path), "type=%q path=%q", tt.attachmentType, tt.path)
	}
}

func TestEnsureSampleDocuments(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "files")

	created, err := EnsureSampleDocuments(dir, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "sample1.pdf"), filepath.Join(dir, "sample2.pdf")}, created)

	data, err := os.ReadFile(created[0])
	require.NoError(t, err)
	assert.Equal(t, samplePDF, data)

	again, err := EnsureSampleDocuments(dir, 2)
	require.NoError(t, err)
	assert.Empty(t, again)
}
