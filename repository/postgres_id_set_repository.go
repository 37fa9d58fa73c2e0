// Package repository provides data access layer implementations and interfaces for the durable ID store
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lazparking/subscription-onboarding/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresIDSetRepository persists ID sets as rows in the id_sets table.
type PostgresIDSetRepository struct {
	db *gorm.DB
}

// NewPostgresIDSetRepository creates a gorm-backed ID set repository.
func NewPostgresIDSetRepository(db *gorm.DB) *PostgresIDSetRepository {
	return &PostgresIDSetRepository{db: db}
}

func (r *PostgresIDSetRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return r.db
}

func (r *PostgresIDSetRepository) Get(ctx context.Context, key string) ([]int, error) {
	db := r.getDB(ctx).WithContext(ctx)

	var row models.IDSet
	err := db.First(&row, "name = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []int{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read id set %q: %w", key, err)
	}

	var ids []int
	if err := json.Unmarshal([]byte(row.Values), &ids); err != nil {
		return nil, fmt.Errorf("corrupt id set %q: %w", key, err)
	}
	return ids, nil
}

func (r *PostgresIDSetRepository) Set(ctx context.Context, key string, ids []int) error {
	if ids == nil {
		ids = []int{}
	}
	bs, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode id set %q: %w", key, err)
	}

	db := r.getDB(ctx).WithContext(ctx)
	row := models.IDSet{Name: key, Values: string(bs)}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"values", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to write id set %q: %w", key, err)
	}
	return nil
}
