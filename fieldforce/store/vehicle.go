package store

import (
	"context"

	"fieldforce.com/fieldforce/core"
	"fieldforce.com/fieldforce/fieldforce/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VehicleStore struct {
	dm *core.DatabaseManager
}

func NewVehicleStore(dm *core.DatabaseManager) *VehicleStore {
	return &VehicleStore{dm: dm}
}

func (s *VehicleStore) List(ctx context.Context) ([]model.Vehicle, error) {
	var vehicles []model.Vehicle
	err := s.dm.Exec(ctx, func(db *gorm.DB) error {
		return db.Order("name").Find(&vehicles).Error
	})
	return vehicles, err
}

func (s *VehicleStore) Upsert(ctx context.Context, vehicles []model.Vehicle) error {
	if len(vehicles) == 0 {
		return nil
	}
	return s.dm.Exec(ctx, func(db *gorm.DB) error {
		return db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "type"}),
		}).Create(&vehicles).Error
	})
}
