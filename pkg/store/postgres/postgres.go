// Package postgres implements the relational store over GORM with the
// PostgreSQL driver.
//
// The relational side holds the static reference data: place, organization,
// tagclass and tag. Schema creation and foreign-key attachment are split
// into two explicit steps because place and tagclass are self-referential
// and tag references tagclass across tables; constraints can only be added
// once every referenced table is fully loaded.
//
// Connections come from the bounded database/sql pool underneath GORM.
// Transient acquisition failures are retried a small fixed number of times
// before surfacing as a store-unavailable condition.
package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/maadb/socialbench/pkg/models"
	"github.com/maadb/socialbench/pkg/store"
)

const (
	maxOpenConns    = 10
	maxIdleConns    = 5
	connMaxLifetime = 30 * time.Minute

	// Bounded retry for transient pool-acquisition failures. Anything that
	// still fails after this surfaces as StoreUnavailableError.
	acquireRetries = 3
	retryBackoff   = 200 * time.Millisecond
)

// foreignKeys are attached after import, in this order. Each statement pair
// is idempotent: the constraint is dropped if present, then re-added.
var foreignKeys = []string{
	`ALTER TABLE place DROP CONSTRAINT IF EXISTS place_part_of_place_fk`,
	`ALTER TABLE place ADD CONSTRAINT place_part_of_place_fk FOREIGN KEY ("PartOfPlaceId") REFERENCES place(id)`,
	`ALTER TABLE organization DROP CONSTRAINT IF EXISTS organization_location_place_fk`,
	`ALTER TABLE organization ADD CONSTRAINT organization_location_place_fk FOREIGN KEY ("LocationPlaceId") REFERENCES place(id)`,
	`ALTER TABLE tagclass DROP CONSTRAINT IF EXISTS tagclass_subclass_of_fk`,
	`ALTER TABLE tagclass ADD CONSTRAINT tagclass_subclass_of_fk FOREIGN KEY ("SubclassOfTagClassId") REFERENCES tagclass(id)`,
	`ALTER TABLE tag DROP CONSTRAINT IF EXISTS tag_type_tagclass_fk`,
	`ALTER TABLE tag ADD CONSTRAINT tag_type_tagclass_fk FOREIGN KEY ("TypeTagClassId") REFERENCES tagclass(id)`,
}

// Store implements store.RelationalStore.
type Store struct {
	db *gorm.DB
}

// New opens the connection pool and verifies it with a ping.
func New(ctx context.Context, dsn string) (*Store, error) {
	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	s := &Store{db: db}
	if err := s.Ping(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return s, nil
}

// transient reports whether err looks like a connection-level failure worth
// one more attempt, as opposed to a SQL error that will fail identically.
func transient(err error) bool {
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func (s *Store) withRetry(ctx context.Context, op func(db *gorm.DB) error) error {
	var err error
	for attempt := 0; attempt < acquireRetries; attempt++ {
		if err = op(s.db.WithContext(ctx)); err == nil {
			return nil
		}
		if !transient(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryBackoff):
		}
	}
	return store.Unavailable("relational", err)
}

func (s *Store) Execute(ctx context.Context, sql string, args ...any) error {
	return s.withRetry(ctx, func(db *gorm.DB) error {
		return db.Exec(sql, args...).Error
	})
}

func (s *Store) FetchAll(ctx context.Context, sql string, args ...any) ([]store.Row, error) {
	var rows []map[string]any
	err := s.withRetry(ctx, func(db *gorm.DB) error {
		rows = nil
		return db.Raw(sql, args...).Scan(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	out := make([]store.Row, len(rows))
	for i, row := range rows {
		out[i] = row
	}
	return out, nil
}

func (s *Store) InsertRows(ctx context.Context, table string, rows []store.Row, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}
	inserted := 0
	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := make([]map[string]any, 0, end-start)
		for _, row := range rows[start:end] {
			batch = append(batch, row)
		}
		tx := s.db.WithContext(ctx).Table(table).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(batch)
		if tx.Error != nil {
			return inserted, fmt.Errorf("bulk insert into %s: %w", table, tx.Error)
		}
		inserted += int(tx.RowsAffected)
	}
	return inserted, nil
}

func (s *Store) ExistingKeys(ctx context.Context, table string) ([]int64, error) {
	var ids []int64
	err := s.withRetry(ctx, func(db *gorm.DB) error {
		ids = nil
		return db.Table(table).Pluck("id", &ids).Error
	})
	if err != nil {
		return nil, fmt.Errorf("fetching existing keys from %s: %w", table, err)
	}
	return ids, nil
}

// CreateSchema creates the reference tables. Foreign keys are deliberately
// absent from the model tags; see AddForeignKeys.
func (s *Store) CreateSchema(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(
		&models.Place{},
		&models.Organization{},
		&models.TagClass{},
		&models.Tag{},
	)
}

func (s *Store) AddForeignKeys(ctx context.Context) error {
	for _, stmt := range foreignKeys {
		if err := s.Execute(ctx, stmt); err != nil {
			return fmt.Errorf("adding foreign key: %w", err)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return store.Unavailable("relational", err)
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
