package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goalkeeperkaa-ctrl/Kinozritel-main4/internal/models"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// appState is the single row holding the entire collection as JSONB.
type appState struct {
	ID        int16          `gorm:"primaryKey"`
	Payload   datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

func (appState) TableName() string { return "app_state" }

const stateRowID = int16(1)

// PostgresStore keeps the collection in one JSONB row. Every Mutate runs in
// a transaction that takes a row-level write lock, so concurrent mutations
// are serialized by the database even across processes.
type PostgresStore struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

// NewPostgresStore connects, migrates the app_state table and seeds the
// state row with an empty collection if it is missing.
func NewPostgresStore(dsn string, log *zap.SugaredLogger) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := db.AutoMigrate(&appState{}); err != nil {
		return nil, fmt.Errorf("migrate app_state: %w", err)
	}

	empty, err := encodeCollection(&Collection{})
	if err != nil {
		return nil, err
	}
	seed := appState{ID: stateRowID, Payload: datatypes.JSON(empty)}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return nil, fmt.Errorf("seed app_state: %w", err)
	}

	log.Infow("postgres store ready")
	return &PostgresStore{db: db, log: log}, nil
}

func (s *PostgresStore) ReadAll(ctx context.Context) ([]models.Application, error) {
	var row appState
	err := s.db.WithContext(ctx).First(&row, stateRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []models.Application{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read app_state: %w", err)
	}
	return decodeCollection(row.Payload).Applications, nil
}

func (s *PostgresStore) Mutate(ctx context.Context, fn func(*Collection) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row appState
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, stateRowID).Error
		if err != nil {
			return fmt.Errorf("lock app_state: %w", err)
		}

		c := decodeCollection(row.Payload)
		if err := fn(c); err != nil {
			return err
		}

		encoded, err := encodeCollection(c)
		if err != nil {
			return fmt.Errorf("encode collection: %w", err)
		}
		updates := map[string]any{
			"payload":    datatypes.JSON(encoded),
			"updated_at": time.Now(),
		}
		if err := tx.Model(&appState{}).Where("id = ?", stateRowID).Updates(updates).Error; err != nil {
			return fmt.Errorf("update app_state: %w", err)
		}
		return nil
	})
}
