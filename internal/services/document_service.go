package services

import (
	"context"
	"fmt"
	"log"
	"os"

	"medibook-server/internal/models"
)

// FileInput is one locally staged upload handed to Attach.
type FileInput struct {
	Name      string // display name, usually the original filename
	LocalPath string // temp path written by the upload middleware
}

// DocumentService owns the document list attached to a health profile:
// uploads to remote storage, visibility toggling and deletion.
type DocumentService struct {
	repo     DocumentRepository
	uploader Uploader
}

// NewDocumentService creates a DocumentService.
func NewDocumentService(repo DocumentRepository, uploader Uploader) *DocumentService {
	return &DocumentService{repo: repo, uploader: uploader}
}

// Attach uploads each staged file and appends the successful ones to the
// profile's document list, preserving input order. A file that is missing
// locally or fails to upload is logged and skipped; a partial batch is a
// valid outcome. The uploader removes each local file whatever the result.
func (s *DocumentService) Attach(ctx context.Context, profileID string, files []FileInput) ([]models.ProfileDocument, error) {
	var docs []models.ProfileDocument
	for _, f := range files {
		if _, err := os.Stat(f.LocalPath); err != nil {
			log.Printf("profile %s: skipping %q, local file unavailable: %v", profileID, f.Name, err)
			continue
		}

		url, err := s.uploader.Upload(ctx, f.LocalPath)
		if err != nil {
			log.Printf("profile %s: upload of %q failed: %v", profileID, f.Name, err)
			continue
		}

		docs = append(docs, models.ProfileDocument{
			ProfileID: profileID,
			Name:      f.Name,
			URL:       url,
			IsVisible: true,
		})
	}

	if len(docs) == 0 {
		return nil, nil
	}
	if err := s.repo.Append(ctx, profileID, docs); err != nil {
		return nil, fmt.Errorf("append documents: %w", err)
	}
	return docs, nil
}

// ToggleVisibility flips whether a document shows up in other users' views
// of the profile.
func (s *DocumentService) ToggleVisibility(ctx context.Context, profileID, docID string) error {
	doc, err := s.repo.Find(ctx, profileID, docID)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	if doc == nil {
		return &NotFoundError{Reason: "document not found"}
	}

	doc.IsVisible = !doc.IsVisible
	if err := s.repo.Update(ctx, doc); err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return nil
}

// Delete removes a document from the profile's list. The remote object is
// left in place; no history is kept.
func (s *DocumentService) Delete(ctx context.Context, profileID, docID string) error {
	deleted, err := s.repo.Delete(ctx, profileID, docID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if !deleted {
		return &NotFoundError{Reason: "document not found"}
	}
	return nil
}

// List returns the profile's full document list, for the owner's own view.
func (s *DocumentService) List(ctx context.Context, profileID string) ([]models.ProfileDocument, error) {
	docs, err := s.repo.List(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// ListVisible returns only the documents the owner has left visible; used
// when rendering another user's view of the profile.
func (s *DocumentService) ListVisible(ctx context.Context, profileID string) ([]models.ProfileDocument, error) {
	docs, err := s.repo.List(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	visible := docs[:0:0]
	for _, d := range docs {
		if d.IsVisible {
			visible = append(visible, d)
		}
	}
	return visible, nil
}
