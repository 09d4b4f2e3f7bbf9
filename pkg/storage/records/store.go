package records

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"payhook/pkg/storage"
)

// Config mirrors the storage configuration for the records table.
type Config struct {
	Driver      string
	DSN         string
	Dialect     string
	Table       string
	AutoMigrate bool
	Pool        storage.PoolConfig
}

// Store implements storage.RecordStore on top of GORM.
type Store struct {
	db    *gorm.DB
	table string
}

type row struct {
	ID             string    `gorm:"column:id;size:128;primaryKey"`
	DataType       string    `gorm:"column:data_type;size:32;not null;index"`
	AttributesJSON string    `gorm:"column:attributes_json;type:text"`
	CreatedAt      time.Time `gorm:"column:created_at;index"`
	UpdatedAt      time.Time `gorm:"column:updated_at;index"`
}

// Open creates a GORM-backed record store.
func Open(cfg Config) (*Store, error) {
	if cfg.Driver == "" && cfg.Dialect == "" {
		return nil, errors.New("storage driver or dialect is required")
	}
	if cfg.DSN == "" {
		return nil, errors.New("storage dsn is required")
	}
	driver, err := storage.ResolveSQLDriver(cfg.Driver, cfg.Dialect)
	if err != nil {
		return nil, err
	}
	gormDB, err := storage.OpenGorm(driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := storage.ApplyPoolConfig(gormDB, cfg.Pool); err != nil {
		return nil, err
	}
	table := cfg.Table
	if table == "" {
		table = "payhook_records"
	}
	store := &Store{db: gormDB, table: table}
	if cfg.AutoMigrate {
		if err := store.migrate(); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// Close closes the underlying DB connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) migrate() error {
	return s.tableDB().AutoMigrate(&row{})
}

func (s *Store) tableDB() *gorm.DB {
	return s.db.Session(&gorm.Session{NewDB: true}).Table(s.table)
}

// UpsertRecord inserts or overwrites a normalized record by ID.
func (s *Store) UpsertRecord(ctx context.Context, record storage.Record) error {
	if s == nil || s.db == nil {
		return errors.New("store is not initialized")
	}
	if record.ID == "" {
		return errors.New("record id is required")
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	data, err := toRow(record)
	if err != nil {
		return err
	}
	return s.tableDB().
		WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"data_type", "attributes_json", "updated_at"}),
		}).
		Create(&data).Error
}

// GetRecord fetches a record by ID, nil when absent.
func (s *Store) GetRecord(ctx context.Context, id string) (*storage.Record, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	var data row
	err := s.tableDB().
		WithContext(ctx).
		Where("id = ?", id).
		Take(&data).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	record, err := fromRow(data)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func toRow(record storage.Record) (row, error) {
	attributes, err := json.Marshal(record.Attributes)
	if err != nil {
		return row{}, err
	}
	return row{
		ID:             record.ID,
		DataType:       record.DataType,
		AttributesJSON: string(attributes),
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}, nil
}

func fromRow(data row) (storage.Record, error) {
	attributes := map[string]string{}
	if data.AttributesJSON != "" {
		if err := json.Unmarshal([]byte(data.AttributesJSON), &attributes); err != nil {
			return storage.Record{}, err
		}
	}
	return storage.Record{
		ID:         data.ID,
		DataType:   data.DataType,
		Attributes: attributes,
		CreatedAt:  data.CreatedAt,
		UpdatedAt:  data.UpdatedAt,
	}, nil
}
