package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"medibook-server/internal/models"
)

// UserDirectory resolves accounts by id, optionally filtered to a role.
type UserDirectory struct {
	db *gorm.DB
}

// NewUserDirectory creates a UserDirectory.
func NewUserDirectory(db *gorm.DB) *UserDirectory {
	return &UserDirectory{db: db}
}

func (d *UserDirectory) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := d.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *UserDirectory) FindDoctor(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := d.db.WithContext(ctx).Where("id = ? AND role = ?", id, models.RoleDoctor).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
