// Package store persists finished rankings to SQLite or Postgres.
package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dispatch-sim/dispatch-sim/sim"
)

// RunRecord is one invocation of the driver.
type RunRecord struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	Scenario  string
	Seed      int64
	Trials    int
	Results   []ResultRecord `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

// ResultRecord is one unit's line in one trial's ranking.
type ResultRecord struct {
	ID        uint `gorm:"primaryKey"`
	RunID     uint `gorm:"index:idx_result_run_trial"`
	Trial     int  `gorm:"index:idx_result_run_trial"`
	Rank      int  `gorm:"column:ranking"` // 1 = best
	Site      int64
	TotalTime float64
	Processed int
	// AverageTime is NULL when the unit completed no incident.
	AverageTime *float64
}

// BestBase is the rank-1 base of one trial.
type BestBase struct {
	Trial       int
	Site        int64
	AverageTime float64
}

// Store wraps a gorm connection.
type Store struct {
	db *gorm.DB
}

// Open connects to dsn and migrates the schema. postgres:// and
// postgresql:// DSNs select Postgres; anything else is a SQLite path
// (":memory:" included).
func Open(dsn string) (*Store, error) {
	cfg := &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        1000,
		Logger:                 logger.Default.LogMode(logger.Silent),
	}

	var (
		db  *gorm.DB
		err error
	)
	if isPostgres(dsn) {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), cfg)
	} else {
		db, err = gorm.Open(sqlite.Open(dsn), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("opening results db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("accessing sql interface: %w", err)
	}
	if db.Dialector.Name() == "sqlite" {
		// one connection, so ":memory:" is a single database
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging results db: %w", err)
	}

	if err := db.AutoMigrate(&RunRecord{}, &ResultRecord{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrating results db: %w", err)
	}
	logrus.Debugf("results db ready (%s)", db.Dialector.Name())
	return &Store{db: db}, nil
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveRun writes a run and every trial ranking in one transaction and
// returns the run ID.
func (s *Store) SaveRun(ctx context.Context, scenario string, seed int64, reports []sim.TrialReport) (uint, error) {
	run := RunRecord{Scenario: scenario, Seed: seed, Trials: len(reports)}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&run).Error; err != nil {
			return err
		}
		rows := lo.FlatMap(reports, func(rep sim.TrialReport, _ int) []ResultRecord {
			return lo.Map(rep.Results, func(r sim.TrialResult, i int) ResultRecord {
				return newResultRecord(run.ID, rep.Trial, i+1, r)
			})
		})
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return 0, fmt.Errorf("saving run: %w", err)
	}
	logrus.Infof("Saved run %d (%d trial(s)) to results db", run.ID, len(reports))
	return run.ID, nil
}

func newResultRecord(runID uint, trial, rank int, r sim.TrialResult) ResultRecord {
	rec := ResultRecord{
		RunID:     runID,
		Trial:     trial,
		Rank:      rank,
		Site:      int64(r.Site),
		TotalTime: r.TotalTime,
		Processed: r.ProcessedCount,
	}
	if !math.IsNaN(r.AverageTime) {
		rec.AverageTime = lo.ToPtr(r.AverageTime)
	}
	return rec
}

// Run loads a run with its results ordered by trial and rank.
func (s *Store) Run(ctx context.Context, runID uint) (*RunRecord, error) {
	var run RunRecord
	err := s.db.WithContext(ctx).
		Preload("Results", func(db *gorm.DB) *gorm.DB { return db.Order("trial, ranking") }).
		First(&run, runID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("run %d not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("loading run %d: %w", runID, err)
	}
	return &run, nil
}

// BestBases returns the rank-1 base of every trial of a run that has one.
// Trials where no unit completed an incident are skipped.
func (s *Store) BestBases(ctx context.Context, runID uint) ([]BestBase, error) {
	var rows []ResultRecord
	err := s.db.WithContext(ctx).
		Where("run_id = ? AND ranking = ? AND average_time IS NOT NULL", runID, 1).
		Order("trial").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("querying best bases: %w", err)
	}
	return lo.Map(rows, func(r ResultRecord, _ int) BestBase {
		return BestBase{Trial: r.Trial, Site: r.Site, AverageTime: *r.AverageTime}
	}), nil
}
