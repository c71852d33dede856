package store

import (
	"context"

	"fieldforce.com/fieldforce/core"
	"fieldforce.com/fieldforce/fieldforce/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ExpenseStore struct {
	dm *core.DatabaseManager
}

func NewExpenseStore(dm *core.DatabaseManager) *ExpenseStore {
	return &ExpenseStore{dm: dm}
}

func (s *ExpenseStore) Insert(ctx context.Context, e *model.Expense) error {
	return s.dm.Exec(ctx, func(db *gorm.DB) error {
		return db.Create(e).Error
	})
}

func (s *ExpenseStore) List(ctx context.Context, month string, userID string) ([]model.Expense, error) {
	var expenses []model.Expense
	err := s.dm.Exec(ctx, func(db *gorm.DB) error {
		dateCol := clause.Column{Name: "date"}
		q := db.Where(clause.Like{Column: dateCol, Value: month + "-%"})
		if userID != "" {
			q = q.Where("user_id = ?", userID)
		}
		return q.Order(clause.OrderByColumn{Column: dateCol, Desc: true}).
			Order("created_at DESC").
			Find(&expenses).Error
	})
	return expenses, err
}
