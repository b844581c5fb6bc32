package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chrissnell/tidegauge/internal/log"
)

type runRecord struct {
	ID              string    `gorm:"primaryKey"`
	Station         string    `gorm:"index:idx_tide_runs_station_created,priority:1;not null"`
	CreatedAt       time.Time `gorm:"index:idx_tide_runs_station_created,priority:2;autoCreateTime:false"`
	Files           int
	Readings        int
	ValidReadings   int
	RunStart        *time.Time
	RunEnd          *time.Time
	RiseRatePerHour float64
	RiseRatePerYear float64
	ReferenceTime   *time.Time
	Constituents    []constituentRecord `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

func (runRecord) TableName() string { return "tide_runs" }

type constituentRecord struct {
	RunID     string `gorm:"primaryKey"`
	Position  int    `gorm:"primaryKey;autoIncrement:false"`
	Name      string `gorm:"not null"`
	Amplitude float64
	Phase     float64
}

func (constituentRecord) TableName() string { return "tide_run_constituents" }

// TimescaleStore keeps runs in a TimescaleDB (or plain PostgreSQL) database
type TimescaleStore struct {
	db    *gorm.DB
	clock clockwork.Clock
}

// NewTimescale connects to the database and migrates the run tables
func NewTimescale(connectionString string, clock clockwork.Clock) (*TimescaleStore, error) {
	dbLogger := logger.New(
		zap.NewStdLog(log.GetZapLogger()),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	log.Info("connecting to TimescaleDB...")
	db, err := gorm.Open(postgres.Open(connectionString), &gorm.Config{Logger: dbLogger})
	if err != nil {
		return nil, fmt.Errorf("unable to create a TimescaleDB connection: %w", err)
	}

	if err := db.AutoMigrate(&runRecord{}, &constituentRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate run tables: %w", err)
	}
	log.Info("TimescaleDB connection successful")

	return &TimescaleStore{db: db, clock: orRealClock(clock)}, nil
}

func (s *TimescaleStore) SaveRun(ctx context.Context, r *Run) error {
	stamp(r, s.clock)
	rec := toRecord(r)
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to insert run %s: %w", r.ID, err)
	}
	return nil
}

func (s *TimescaleStore) ListRuns(ctx context.Context, station string, limit int) ([]Run, error) {
	q := s.db.WithContext(ctx).
		Preload("Constituents", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Order("created_at DESC").Order("id")
	if station != "" {
		q = q.Where("station = ?", station)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var recs []runRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}

	runs := make([]Run, len(recs))
	for i := range recs {
		runs[i] = fromRecord(&recs[i])
	}
	return runs, nil
}

func (s *TimescaleStore) GetRun(ctx context.Context, id string) (*Run, error) {
	var rec runRecord
	err := s.db.WithContext(ctx).
		Preload("Constituents", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run %s: %w", id, err)
	}

	r := fromRecord(&rec)
	return &r, nil
}

func (s *TimescaleStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toRecord(r *Run) runRecord {
	rec := runRecord{
		ID:              r.ID,
		Station:         r.Station,
		CreatedAt:       r.CreatedAt,
		Files:           r.Files,
		Readings:        r.Readings,
		ValidReadings:   r.ValidReadings,
		RunStart:        timePtr(r.RunStart),
		RunEnd:          timePtr(r.RunEnd),
		RiseRatePerHour: r.RiseRatePerHour,
		RiseRatePerYear: r.RiseRatePerYear,
		ReferenceTime:   timePtr(r.ReferenceTime),
	}
	for i, c := range r.Constituents {
		rec.Constituents = append(rec.Constituents, constituentRecord{
			RunID:     r.ID,
			Position:  i,
			Name:      c.Name,
			Amplitude: c.Amplitude,
			Phase:     c.Phase,
		})
	}
	return rec
}

func fromRecord(rec *runRecord) Run {
	r := Run{
		ID:              rec.ID,
		Station:         rec.Station,
		CreatedAt:       rec.CreatedAt.UTC(),
		Files:           rec.Files,
		Readings:        rec.Readings,
		ValidReadings:   rec.ValidReadings,
		RunStart:        timeVal(rec.RunStart),
		RunEnd:          timeVal(rec.RunEnd),
		RiseRatePerHour: rec.RiseRatePerHour,
		RiseRatePerYear: rec.RiseRatePerYear,
		ReferenceTime:   timeVal(rec.ReferenceTime),
		Constituents:    make([]ConstituentResult, len(rec.Constituents)),
	}
	for i, c := range rec.Constituents {
		r.Constituents[i] = ConstituentResult{Name: c.Name, Amplitude: c.Amplitude, Phase: c.Phase}
	}
	return r
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func timeVal(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}
