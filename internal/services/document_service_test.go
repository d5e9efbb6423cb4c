package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medibook-server/internal/models"
)

// fakeDocumentRepo is an in-memory DocumentRepository keyed by profile.
type fakeDocumentRepo struct {
	byProfile map[string][]models.ProfileDocument
	nextID    int
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{byProfile: make(map[string][]models.ProfileDocument)}
}

func (r *fakeDocumentRepo) Append(_ context.Context, profileID string, docs []models.ProfileDocument) error {
	for i := range docs {
		r.nextID++
		docs[i].ID = fmt.Sprintf("doc-%d", r.nextID)
		docs[i].ProfileID = profileID
		r.byProfile[profileID] = append(r.byProfile[profileID], docs[i])
	}
	return nil
}

func (r *fakeDocumentRepo) Find(_ context.Context, profileID, docID string) (*models.ProfileDocument, error) {
	for _, d := range r.byProfile[profileID] {
		if d.ID == docID {
			cp := d
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeDocumentRepo) Update(_ context.Context, doc *models.ProfileDocument) error {
	docs := r.byProfile[doc.ProfileID]
	for i, d := range docs {
		if d.ID == doc.ID {
			docs[i] = *doc
			return nil
		}
	}
	return fmt.Errorf("document %s not stored", doc.ID)
}

func (r *fakeDocumentRepo) Delete(_ context.Context, profileID, docID string) (bool, error) {
	docs := r.byProfile[profileID]
	for i, d := range docs {
		if d.ID == docID {
			r.byProfile[profileID] = append(docs[:i], docs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeDocumentRepo) List(_ context.Context, profileID string) ([]models.ProfileDocument, error) {
	return append([]models.ProfileDocument(nil), r.byProfile[profileID]...), nil
}

// fakeUploader maps staged paths to URLs and can fail selected paths. Like
// the real uploader it removes the local file either way.
type fakeUploader struct {
	failPaths map[string]bool
	uploaded  []string
}

func (u *fakeUploader) Upload(_ context.Context, localPath string) (string, error) {
	defer os.Remove(localPath)
	if u.failPaths[localPath] {
		return "", fmt.Errorf("upload refused")
	}
	u.uploaded = append(u.uploaded, localPath)
	return "https://bucket.example.com/pdfs/" + filepath.Base(localPath), nil
}

func stageFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))
	return path
}

func TestAttach(t *testing.T) {
	repo := newFakeDocumentRepo()
	uploader := &fakeUploader{}
	svc := NewDocumentService(repo, uploader)

	a := stageFile(t, "scan-a.pdf")
	b := stageFile(t, "scan-b.pdf")

	docs, err := svc.Attach(context.Background(), "profile-1", []FileInput{
		{Name: "scan-a.pdf", LocalPath: a},
		{Name: "scan-b.pdf", LocalPath: b},
	})
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "scan-a.pdf", docs[0].Name)
	assert.Equal(t, "scan-b.pdf", docs[1].Name)
	assert.True(t, docs[0].IsVisible)
	assert.Contains(t, docs[0].URL, "scan-a.pdf")

	// The uploader consumed both staged files.
	assert.NoFileExists(t, a)
	assert.NoFileExists(t, b)
}

func TestAttachPartialBatch(t *testing.T) {
	repo := newFakeDocumentRepo()
	bad := stageFile(t, "bad.pdf")
	good := stageFile(t, "good.pdf")
	uploader := &fakeUploader{failPaths: map[string]bool{bad: true}}
	svc := NewDocumentService(repo, uploader)

	docs, err := svc.Attach(context.Background(), "profile-1", []FileInput{
		{Name: "bad.pdf", LocalPath: bad},
		{Name: "good.pdf", LocalPath: good},
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "good.pdf", docs[0].Name)

	// The failed file was still cleaned up locally.
	assert.NoFileExists(t, bad)
}

func TestAttachMissingLocalFile(t *testing.T) {
	repo := newFakeDocumentRepo()
	uploader := &fakeUploader{}
	svc := NewDocumentService(repo, uploader)

	docs, err := svc.Attach(context.Background(), "profile-1", []FileInput{
		{Name: "ghost.pdf", LocalPath: filepath.Join(t.TempDir(), "ghost.pdf")},
	})
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.Empty(t, uploader.uploaded)
	assert.Empty(t, repo.byProfile["profile-1"])
}

func TestToggleVisibility(t *testing.T) {
	repo := newFakeDocumentRepo()
	svc := NewDocumentService(repo, &fakeUploader{})

	path := stageFile(t, "report.pdf")
	docs, err := svc.Attach(context.Background(), "profile-1", []FileInput{{Name: "report.pdf", LocalPath: path}})
	require.NoError(t, err)
	docID := docs[0].ID

	require.NoError(t, svc.ToggleVisibility(context.Background(), "profile-1", docID))
	stored, err := repo.Find(context.Background(), "profile-1", docID)
	require.NoError(t, err)
	assert.False(t, stored.IsVisible)

	// Toggling again restores visibility.
	require.NoError(t, svc.ToggleVisibility(context.Background(), "profile-1", docID))
	stored, err = repo.Find(context.Background(), "profile-1", docID)
	require.NoError(t, err)
	assert.True(t, stored.IsVisible)
}

func TestToggleVisibilityNotFound(t *testing.T) {
	svc := NewDocumentService(newFakeDocumentRepo(), &fakeUploader{})

	err := svc.ToggleVisibility(context.Background(), "profile-1", "missing")

	var nferr *NotFoundError
	require.ErrorAs(t, err, &nferr)
	assert.Equal(t, "document not found", nferr.Error())
}

func TestDeleteDocument(t *testing.T) {
	repo := newFakeDocumentRepo()
	svc := NewDocumentService(repo, &fakeUploader{})

	a := stageFile(t, "a.pdf")
	b := stageFile(t, "b.pdf")
	docs, err := svc.Attach(context.Background(), "profile-1", []FileInput{
		{Name: "a.pdf", LocalPath: a},
		{Name: "b.pdf", LocalPath: b},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "profile-1", docs[0].ID))

	remaining, err := svc.List(context.Background(), "profile-1")
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "b.pdf", remaining[0].Name)
}

func TestDeleteDocumentNotFound(t *testing.T) {
	svc := NewDocumentService(newFakeDocumentRepo(), &fakeUploader{})

	err := svc.Delete(context.Background(), "profile-1", "missing")

	var nferr *NotFoundError
	require.ErrorAs(t, err, &nferr)
}

func TestListVisible(t *testing.T) {
	repo := newFakeDocumentRepo()
	svc := NewDocumentService(repo, &fakeUploader{})

	a := stageFile(t, "visible.pdf")
	b := stageFile(t, "hidden.pdf")
	docs, err := svc.Attach(context.Background(), "profile-1", []FileInput{
		{Name: "visible.pdf", LocalPath: a},
		{Name: "hidden.pdf", LocalPath: b},
	})
	require.NoError(t, err)
	require.NoError(t, svc.ToggleVisibility(context.Background(), "profile-1", docs[1].ID))

	all, err := svc.List(context.Background(), "profile-1")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	visible, err := svc.ListVisible(context.Background(), "profile-1")
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "visible.pdf", visible[0].Name)
}
