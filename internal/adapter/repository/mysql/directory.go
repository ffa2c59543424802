package mysql

import (
	"context"
	"time"

	directoryDomain "vendor-onboarding-service/internal/domain/directory"

	"gorm.io/gorm"
)

// Table: approver_chain_entries, one row per (business unit, tier).
type ApproverChainEntry struct {
	ID           uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	BusinessUnit string    `gorm:"column:business_unit;size:128;not null;uniqueIndex:ux_chain_unit_tier,priority:1"`
	Tier         int       `gorm:"column:tier;not null;uniqueIndex:ux_chain_unit_tier,priority:2"`
	Email        string    `gorm:"column:email;size:255;not null"`
	DisplayName  string    `gorm:"column:display_name;size:255;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (ApproverChainEntry) TableName() string { return "approver_chain_entries" }

// DirectoryRepository serves approver chains from the database.
type DirectoryRepository struct{ db *gorm.DB }

func NewDirectoryRepository(db *gorm.DB) *DirectoryRepository { return &DirectoryRepository{db: db} }

// ResolveApprovers returns the chain in tier order. An unconfigured
// unit yields an empty chain, never a fabricated default approver.
func (r *DirectoryRepository) ResolveApprovers(ctx context.Context, businessUnit string) ([]directoryDomain.Approver, error) {
	var rows []ApproverChainEntry
	res := r.db.WithContext(ctx).
		Where("business_unit = ?", businessUnit).
		Order("tier ASC").
		Find(&rows)
	if res.Error != nil {
		return nil, res.Error
	}
	out := make([]directoryDomain.Approver, 0, len(rows))
	for _, row := range rows {
		out = append(out, directoryDomain.Approver{Email: row.Email, DisplayName: row.DisplayName})
	}
	return out, nil
}
