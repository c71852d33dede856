package store

import (
	"context"
	"time"

	"fieldforce.com/fieldforce/core"
	"fieldforce.com/fieldforce/fieldforce/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LocationStore struct {
	dm *core.DatabaseManager
}

func NewLocationStore(dm *core.DatabaseManager) *LocationStore {
	return &LocationStore{dm: dm}
}

func (s *LocationStore) Append(ctx context.Context, entry *model.MovementLog) error {
	return s.dm.Exec(ctx, func(db *gorm.DB) error {
		return db.Create(entry).Error
	})
}

func (s *LocationStore) ListSince(ctx context.Context, since time.Time) ([]model.MovementLog, error) {
	var logs []model.MovementLog
	err := s.dm.Exec(ctx, func(db *gorm.DB) error {
		tsCol := clause.Column{Name: "timestamp"}
		return db.Where(clause.Gte{Column: tsCol, Value: since}).
			Order(clause.OrderByColumn{Column: tsCol, Desc: true}).
			Find(&logs).Error
	})
	return logs, err
}
