package repository

import (
	"context"

	"gorm.io/gorm"

	"forumhub/internal/model"
)

// SectionRepository persists sections and their allowed-role sets.
type SectionRepository interface {
	Create(ctx context.Context, section *model.Section) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*model.Section, error)
	AllowedRoles(ctx context.Context, id int64) ([]model.Role, error)
	ListForRole(ctx context.Context, role model.Role) ([]model.Section, error)
}

type sectionRepository struct {
	db *gorm.DB
}

// NewSectionRepository builds a GORM-backed repository.
func NewSectionRepository(db *gorm.DB) SectionRepository {
	return &sectionRepository{db: db}
}

// Create inserts the section and its allowed-role rows together.
func (r *sectionRepository) Create(ctx context.Context, section *model.Section) error {
	return r.db.WithContext(ctx).Create(section).Error
}

func (r *sectionRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("section_id = ?", id).Delete(&model.SectionRole{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Section{}, id).Error
	})
}

func (r *sectionRepository) FindByID(ctx context.Context, id int64) (*model.Section, error) {
	var section model.Section
	if err := r.db.WithContext(ctx).Preload("AllowedFor").First(&section, id).Error; err != nil {
		return nil, err
	}
	return &section, nil
}

func (r *sectionRepository) AllowedRoles(ctx context.Context, id int64) ([]model.Role, error) {
	var rows []model.SectionRole
	if err := r.db.WithContext(ctx).Where("section_id = ?", id).Find(&rows).Error; err != nil {
		return nil, err
	}
	roles := make([]model.Role, 0, len(rows))
	for _, row := range rows {
		roles = append(roles, row.Role)
	}
	return roles, nil
}

func (r *sectionRepository) ListForRole(ctx context.Context, role model.Role) ([]model.Section, error) {
	var sections []model.Section
	err := r.db.WithContext(ctx).
		Joins("JOIN section_roles ON section_roles.section_id = sections.id").
		Where("section_roles.role = ?", role).
		Find(&sections).Error
	if err != nil {
		return nil, err
	}
	return sections, nil
}
