package store

import (
	"context"
	"errors"

	"fieldforce.com/fieldforce/core"
	"fieldforce.com/fieldforce/fieldforce/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BranchStore struct {
	dm *core.DatabaseManager
}

func NewBranchStore(dm *core.DatabaseManager) *BranchStore {
	return &BranchStore{dm: dm}
}

func (s *BranchStore) Find(ctx context.Context, id string) (*model.Branch, error) {
	var b model.Branch
	err := s.dm.Exec(ctx, func(db *gorm.DB) error {
		return db.Where("id = ?", id).Take(&b).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *BranchStore) List(ctx context.Context) ([]model.Branch, error) {
	var branches []model.Branch
	err := s.dm.Exec(ctx, func(db *gorm.DB) error {
		return db.Order("name").Find(&branches).Error
	})
	return branches, err
}

func (s *BranchStore) Upsert(ctx context.Context, branches []model.Branch) error {
	if len(branches) == 0 {
		return nil
	}
	return s.dm.Exec(ctx, func(db *gorm.DB) error {
		return db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "lat", "lng", "radius", "target_amount"}),
		}).Create(&branches).Error
	})
}
