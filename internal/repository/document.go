package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"medibook-server/internal/models"
)

// DocumentRepository is the GORM-backed profile-document store.
type DocumentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a DocumentRepository.
func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Append(ctx context.Context, profileID string, docs []models.ProfileDocument) error {
	for i := range docs {
		docs[i].ProfileID = profileID
	}
	return r.db.WithContext(ctx).Create(&docs).Error
}

func (r *DocumentRepository) Find(ctx context.Context, profileID, docID string) (*models.ProfileDocument, error) {
	var doc models.ProfileDocument
	err := r.db.WithContext(ctx).
		Where("id = ? AND profile_id = ?", docID, profileID).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepository) Update(ctx context.Context, doc *models.ProfileDocument) error {
	// Select("is_visible") so a toggle back to false is not dropped as a
	// zero value.
	return r.db.WithContext(ctx).
		Model(doc).
		Select("is_visible").
		Updates(map[string]interface{}{"is_visible": doc.IsVisible}).Error
}

func (r *DocumentRepository) Delete(ctx context.Context, profileID, docID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND profile_id = ?", docID, profileID).
		Delete(&models.ProfileDocument{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *DocumentRepository) List(ctx context.Context, profileID string) ([]models.ProfileDocument, error) {
	var docs []models.ProfileDocument
	err := r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("created_at asc").
		Find(&docs).Error
	return docs, err
}
