package store

import (
	"context"
	"errors"

	"fieldforce.com/fieldforce/core"
	"fieldforce.com/fieldforce/fieldforce/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileStore struct {
	dm *core.DatabaseManager
}

func NewProfileStore(dm *core.DatabaseManager) *ProfileStore {
	return &ProfileStore{dm: dm}
}

func (s *ProfileStore) Find(ctx context.Context, id string) (*model.Profile, error) {
	var p model.Profile
	err := s.dm.Exec(ctx, func(db *gorm.DB) error {
		return db.Where("id = ?", id).Take(&p).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProfileStore) List(ctx context.Context) ([]model.Profile, error) {
	var profiles []model.Profile
	err := s.dm.Exec(ctx, func(db *gorm.DB) error {
		return db.Order("name").Find(&profiles).Error
	})
	return profiles, err
}

func (s *ProfileStore) Delete(ctx context.Context, id string) (bool, error) {
	var affected int64
	err := s.dm.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&model.MovementLog{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.AttendanceRecord{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&model.Profile{})
		affected = result.RowsAffected
		return result.Error
	})
	return affected > 0, err
}

// Upsert inserts or updates profiles by id.
func (s *ProfileStore) Upsert(ctx context.Context, profiles []model.Profile) error {
	if len(profiles) == 0 {
		return nil
	}
	return s.dm.Exec(ctx, func(db *gorm.DB) error {
		return db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "name", "role", "branch_id"}),
		}).Create(&profiles).Error
	})
}
