package referral

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/gorillago3318/portal/internal/models"
)

// gormDirectory implements Directory against the agents table.
type gormDirectory struct {
	db *gorm.DB
}

// NewDirectory returns a Directory backed by the given database.
func NewDirectory(db *gorm.DB) Directory {
	return &gormDirectory{db: db}
}

// FindByReferralCode looks up a live agent by referral code. The default
// scope already excludes soft-deleted rows, which is what attribution wants.
// Account status is deliberately not filtered: a code belonging to a pending
// or deactivated account still attributes its leads, so nothing is lost
// while the account is under review.
func (d *gormDirectory) FindByReferralCode(ctx context.Context, code string) (*models.Agent, error) {
	var agent models.Agent
	err := d.db.WithContext(ctx).Where("referral_code = ?", code).First(&agent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &agent, nil
}
