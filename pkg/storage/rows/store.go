package rows

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"payhook/pkg/storage"
)

// Config mirrors the storage configuration for the rows table.
type Config struct {
	Driver      string
	DSN         string
	Dialect     string
	Table       string
	AutoMigrate bool
	Pool        storage.PoolConfig
}

// Store implements storage.RowSink on top of GORM. Rows are append-only;
// nothing ever updates or deletes them.
type Store struct {
	db    *gorm.DB
	table string
}

type row struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	SheetRange string    `gorm:"column:sheet_range;size:128;not null;index"`
	RecordID   string    `gorm:"column:record_id;size:128;index"`
	DataType   string    `gorm:"column:data_type;size:32;index"`
	ValuesJSON string    `gorm:"column:values_json;type:text"`
	CreatedAt  time.Time `gorm:"column:created_at;index"`
}

// Open creates a GORM-backed row sink.
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
		table = "payhook_rows"
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

// AppendRow appends one ordered row.
func (s *Store) AppendRow(ctx context.Context, record storage.Row) error {
	if s == nil || s.db == nil {
		return errors.New("store is not initialized")
	}
	if record.SheetRange == "" {
		return errors.New("sheet range is required")
	}
	values, err := json.Marshal(record.Values)
	if err != nil {
		return err
	}
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	data := row{
		SheetRange: record.SheetRange,
		RecordID:   record.RecordID,
		DataType:   record.DataType,
		ValuesJSON: string(values),
		CreatedAt:  createdAt,
	}
	return s.tableDB().WithContext(ctx).Create(&data).Error
}

// ListRows returns rows for a range in append order.
func (s *Store) ListRows(ctx context.Context, sheetRange string, limit int) ([]storage.Row, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	query := s.tableDB().
		WithContext(ctx).
		Where("sheet_range = ?", sheetRange).
		Order("id asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var data []row
	if err := query.Find(&data).Error; err != nil {
		return nil, err
	}
	out := make([]storage.Row, 0, len(data))
	for _, item := range data {
		var values []string
		if item.ValuesJSON != "" {
			if err := json.Unmarshal([]byte(item.ValuesJSON), &values); err != nil {
				return nil, err
			}
		}
		out = append(out, storage.Row{
			SheetRange: item.SheetRange,
			RecordID:   item.RecordID,
			DataType:   item.DataType,
			Values:     values,
			CreatedAt:  item.CreatedAt,
		})
	}
	return out, nil
}
