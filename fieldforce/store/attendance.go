package store

import (
	"context"
	"errors"
	"time"

	"fieldforce.com/fieldforce/core"
	"fieldforce.com/fieldforce/fieldforce/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttendanceStore struct {
	dm *core.DatabaseManager
}

func NewAttendanceStore(dm *core.DatabaseManager) *AttendanceStore {
	return &AttendanceStore{dm: dm}
}

func (s *AttendanceStore) FindByUserDate(ctx context.Context, userID, date string) (*model.AttendanceRecord, error) {
	var rec model.AttendanceRecord
	err := s.dm.Exec(ctx, func(db *gorm.DB) error {
		return db.Where(map[string]any{"user_id": userID, "date": date}).Take(&rec).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *AttendanceStore) Insert(ctx context.Context, rec *model.AttendanceRecord) error {
	return s.dm.Exec(ctx, func(db *gorm.DB) error {
		return db.Create(rec).Error
	})
}

func (s *AttendanceStore) CompleteCheckOut(ctx context.Context, id string, at time.Time, status model.AttendanceStatus) (bool, error) {
	var affected int64
	err := s.dm.Exec(ctx, func(db *gorm.DB) error {
		result := db.Model(&model.AttendanceRecord{}).
			Where("id = ? AND check_out IS NULL", id).
			Updates(map[string]any{"check_out": at, "status": status})
		affected = result.RowsAffected
		return result.Error
	})
	return affected > 0, err
}

func (s *AttendanceStore) UpdateStatus(ctx context.Context, id string, status model.AttendanceStatus) (bool, error) {
	var affected int64
	err := s.dm.Exec(ctx, func(db *gorm.DB) error {
		result := db.Model(&model.AttendanceRecord{}).
			Where("id = ? AND check_out IS NULL", id).
			Update("status", status)
		affected = result.RowsAffected
		return result.Error
	})
	return affected > 0, err
}

func (s *AttendanceStore) ListBetween(ctx context.Context, from, to string) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := s.dm.Exec(ctx, func(db *gorm.DB) error {
		dateCol := clause.Column{Name: "date"}
		return db.Where(clause.Gte{Column: dateCol, Value: from}).
			Where(clause.Lte{Column: dateCol, Value: to}).
			Order(clause.OrderByColumn{Column: dateCol}).
			Order("user_id").
			Find(&records).Error
	})
	return records, err
}
