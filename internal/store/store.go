// Package store publishes canonical datasets to PostgreSQL.
//
// A publish is one transaction: every record is upserted on its village
// code, rows left over from earlier builds are removed, and a builds row
// is written. Readers never see a half-published dataset.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kodepos-id/kodepos/pkg/codec"
	"github.com/kodepos-id/kodepos/pkg/constants"
	"github.com/kodepos-id/kodepos/pkg/dataset"
	"github.com/kodepos-id/kodepos/pkg/errors"
	"github.com/kodepos-id/kodepos/pkg/manifest"
)

// BatchSize is the number of rows per INSERT statement.
const BatchSize = 1000

// Store is a PostgreSQL publish sink.
type Store struct {
	db     *gorm.DB
	logger *zerolog.Logger
}

// Open connects to the database at dsn.
func Open(dsn string, logger *zerolog.Logger) (*Store, error) {
	if dsn == "" {
		return nil, errors.NewConfigError("store", "database DSN is empty", nil)
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 newLogger(logger),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(4)
	sqlDB.SetMaxIdleConns(4)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return New(db, logger), nil
}

// New wraps an open gorm handle.
func New(db *gorm.DB, logger *zerolog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Migrate creates or updates the tables.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&PostalCode{}, &Build{}); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

// Publication identifies the build being published.
type Publication struct {
	BuildID   string
	Profile   string
	BuildYear int
}

// FromManifest fills a Publication from a build manifest.
func FromManifest(m *manifest.Manifest) Publication {
	return Publication{BuildID: m.BuildID, Profile: m.Profile, BuildYear: m.BuildYear}
}

// PublishResult summarizes a publish.
type PublishResult struct {
	BuildID     string
	Fingerprint string
	Upserted    int
	Removed     int64
}

// Publish replaces the published dataset with records. Without a build ID
// one is derived from the record fingerprint, so republishing the same
// records is idempotent.
func (s *Store) Publish(ctx context.Context, records []dataset.Record, pub Publication) (*PublishResult, error) {
	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			return nil, errors.NewValidationError("records", i, err.Error())
		}
	}

	res := &PublishResult{BuildID: pub.BuildID, Fingerprint: codec.Fingerprint(records)}
	if res.BuildID == "" {
		res.BuildID = uuid.NewSHA1(manifest.Namespace, []byte(res.Fingerprint)).String()
	}
	rows := make([]PostalCode, len(records))
	assigned := 0
	for i, rec := range records {
		rows[i] = FromRecord(rec, res.BuildID)
		if rec.Assigned() {
			assigned++
		}
	}

	ctx, cancel := context.WithTimeout(ctx, constants.PublishTimeout)
	defer cancel()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsert(tx, rows); err != nil {
			return err
		}
		del := tx.Where("build_id <> ?", res.BuildID).Delete(&PostalCode{})
		if del.Error != nil {
			return fmt.Errorf("removing stale rows: %w", del.Error)
		}
		res.Removed = del.RowsAffected

		b := Build{
			BuildID:     res.BuildID,
			Profile:     pub.Profile,
			BuildYear:   pub.BuildYear,
			Fingerprint: res.Fingerprint,
			Records:     len(rows),
			Assigned:    assigned,
			PublishedAt: time.Now().UTC(),
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&b).Error; err != nil {
			return fmt.Errorf("recording build %s: %w", res.BuildID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.Upserted = len(rows)

	s.logger.Info().
		Str("build_id", res.BuildID).
		Str("fingerprint", res.Fingerprint).
		Int("upserted", res.Upserted).
		Int64("removed", res.Removed).
		Msg("Published dataset")
	return res, nil
}

// upsert inserts rows, updating every column of rows whose village code
// already exists.
func upsert(tx *gorm.DB, rows []PostalCode) error {
	if len(rows) == 0 {
		return nil
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "village_code"}},
		UpdateAll: true,
	}).CreateInBatches(rows, BatchSize).Error
	if err != nil {
		return fmt.Errorf("upserting postal codes: %w", err)
	}
	return nil
}

// Lookup returns the published record of a village.
func (s *Store) Lookup(ctx context.Context, villageCode string) (dataset.Record, error) {
	var row PostalCode
	err := s.db.WithContext(ctx).Where("village_code = ?", villageCode).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dataset.Record{}, errors.NewNotFoundError("village", villageCode)
	}
	if err != nil {
		return dataset.Record{}, err
	}
	return row.Record(), nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
