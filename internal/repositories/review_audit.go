package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/resume-reviewer/internal/models"
)

type ReviewAuditRepository interface {
	Create(ctx context.Context, audit *models.ReviewAudit) error
}

type reviewAuditRepository struct {
	db *gorm.DB
}

func NewReviewAuditRepository(db *gorm.DB) ReviewAuditRepository {
	return &reviewAuditRepository{db: db}
}

// Create implements ReviewAuditRepository.
func (r *reviewAuditRepository) Create(ctx context.Context, audit *models.ReviewAudit) error {
	if audit.ID == uuid.Nil {
		audit.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(audit).Error; err != nil {
		return fmt.Errorf("failed to create review audit: %w", err)
	}
	return nil
}
