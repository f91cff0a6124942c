package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/agentmesh/core/envelope"
)

// documentStateRow is the gorm model backing the shared document_states
// table (see internal/migration/migrations). All state types share one
// table, discriminated by StateType, matching the "document-store mode
// keeps one collection per state type, overridable" requirement while
// staying within a single relational schema.
type documentStateRow struct {
	StateType string `gorm:"column:state_type;primaryKey"`
	Key       string `gorm:"column:key;primaryKey"`
	Version   int64  `gorm:"column:version"`
	Data      []byte `gorm:"column:data"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName implements gorm's Tabler.
func (documentStateRow) TableName() string { return "document_states" }

// DocumentStore is a gorm-backed Store/VersionedStore implementation over
// postgres, mysql, or sqlite (whichever dialect db was opened with).
type DocumentStore[S any] struct {
	db        *gorm.DB
	stateType string
}

// NewDocumentStore creates a DocumentStore for stateType, sharing db (and
// the document_states table) with stores for other state types.
func NewDocumentStore[S any](db *gorm.DB, stateType string) *DocumentStore[S] {
	return &DocumentStore[S]{db: db, stateType: stateType}
}

// NewDocumentStoreFor is a convenience constructor that derives stateType
// from S's fully-qualified type name via envelope.TypeNameOf.
func NewDocumentStoreFor[S any](db *gorm.DB) *DocumentStore[S] {
	var zero S
	return NewDocumentStore[S](db, envelope.TypeNameOf(&zero))
}

func (d *DocumentStore[S]) Load(ctx context.Context, id envelope.AgentID) (S, bool, error) {
	var zero S
	var row documentStateRow

	err := d.db.WithContext(ctx).
		Where("state_type = ? AND key = ?", d.stateType, id.String()).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("state: document load: %w", err)
	}

	out, err := decodeState[S](row.Data)
	if err != nil {
		return zero, false, err
	}
	return out, true, nil
}

func (d *DocumentStore[S]) Save(ctx context.Context, id envelope.AgentID, st S) error {
	data, err := encodeState(st)
	if err != nil {
		return err
	}

	row := documentStateRow{
		StateType: d.stateType,
		Key:       id.String(),
		Data:      data,
		UpdatedAt: time.Now(),
	}

	err = d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "state_type"}, {Name: "key"}},
		DoUpdates: clause.Assignments(map[string]any{"data": row.Data, "version": gorm.Expr("version + 1"), "updated_at": row.UpdatedAt}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("state: document save: %w", err)
	}
	return nil
}

func (d *DocumentStore[S]) Delete(ctx context.Context, id envelope.AgentID) error {
	err := d.db.WithContext(ctx).
		Where("state_type = ? AND key = ?", d.stateType, id.String()).
		Delete(&documentStateRow{}).Error
	if err != nil {
		return fmt.Errorf("state: document delete: %w", err)
	}
	return nil
}

func (d *DocumentStore[S]) Exists(ctx context.Context, id envelope.AgentID) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&documentStateRow{}).
		Where("state_type = ? AND key = ?", d.stateType, id.String()).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("state: document exists: %w", err)
	}
	return count > 0, nil
}

func (d *DocumentStore[S]) SaveVersioned(ctx context.Context, id envelope.AgentID, st S, expectedVersion int64) error {
	data, err := encodeState(st)
	if err != nil {
		return err
	}

	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := d.currentVersionTx(tx, id)
		if err != nil {
			return err
		}
		if current != expectedVersion {
			return ErrVersionConflict
		}

		now := time.Now()
		if current == 0 {
			row := documentStateRow{
				StateType: d.stateType,
				Key:       id.String(),
				Version:   1,
				Data:      data,
				UpdatedAt: now,
			}
			return tx.Create(&row).Error
		}

		res := tx.Model(&documentStateRow{}).
			Where("state_type = ? AND key = ? AND version = ?", d.stateType, id.String(), expectedVersion).
			Updates(map[string]any{"data": data, "version": expectedVersion + 1, "updated_at": now})
		if res.Error != nil {
			return fmt.Errorf("state: document save versioned: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrVersionConflict
		}
		return nil
	})
}

func (d *DocumentStore[S]) CurrentVersion(ctx context.Context, id envelope.AgentID) (int64, error) {
	return d.currentVersionTx(d.db.WithContext(ctx), id)
}

func (d *DocumentStore[S]) currentVersionTx(tx *gorm.DB, id envelope.AgentID) (int64, error) {
	var row documentStateRow
	err := tx.Select("version").
		Where("state_type = ? AND key = ?", d.stateType, id.String()).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("state: document current version: %w", err)
	}
	return row.Version, nil
}

var (
	_ Store[struct{}]          = (*DocumentStore[struct{}])(nil)
	_ VersionedStore[struct{}] = (*DocumentStore[struct{}])(nil)
)
