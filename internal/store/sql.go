package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported SQL drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// recordRow is the single table behind every collection. Seq orders rows
// that share a creation time by insertion.
type recordRow struct {
	Seq        uint64    `gorm:"primaryKey;autoIncrement"`
	ID         string    `gorm:"size:36;not null;uniqueIndex"`
	Collection string    `gorm:"size:64;not null;index:idx_records_scope"`
	AccountID  string    `gorm:"size:128;not null;index:idx_records_scope"`
	CreatedAt  time.Time `gorm:"not null;index"`
	Data       string    `gorm:"type:text;not null"`
}

func (recordRow) TableName() string {
	return "records"
}

type sqlStore struct {
	db *gorm.DB
}

// OpenSQL connects to a SQL database through gorm and migrates the records
// table. driver is "sqlite" or "postgres".
func OpenSQL(driver, dsn string) (*Backend, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported SQL driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", driver, err)
	}
	return openGorm(db)
}

func openGorm(db *gorm.DB) (*Backend, error) {
	if err := db.AutoMigrate(&recordRow{}); err != nil {
		return nil, fmt.Errorf("migrating records table: %w", err)
	}
	return newBackend(&sqlStore{db: db}), nil
}

func (s *sqlStore) scope(ctx context.Context, account, collection string) *gorm.DB {
	return s.db.WithContext(ctx).Where("account_id = ? AND collection = ?", account, collection)
}

func (s *sqlStore) list(ctx context.Context, account, collection string) ([]row, error) {
	var found []recordRow
	if err := s.scope(ctx, account, collection).Order("created_at ASC, seq ASC").Find(&found).Error; err != nil {
		return nil, fmt.Errorf("querying %s: %w", collection, err)
	}
	rows := make([]row, len(found))
	for i, f := range found {
		rows[i] = row{ID: f.ID, CreatedAt: f.CreatedAt.UTC(), Data: []byte(f.Data)}
	}
	return rows, nil
}

func (s *sqlStore) insert(ctx context.Context, account, collection string, r row) error {
	rec := recordRow{
		ID:         r.ID,
		Collection: collection,
		AccountID:  account,
		CreatedAt:  r.CreatedAt,
		Data:       string(r.Data),
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("inserting into %s: %w", collection, err)
	}
	return nil
}

func (s *sqlStore) replace(ctx context.Context, account, collection string, r row) (bool, error) {
	res := s.scope(ctx, account, collection).
		Model(&recordRow{}).
		Where("id = ?", r.ID).
		Update("data", string(r.Data))
	if res.Error != nil {
		return false, fmt.Errorf("updating %s: %w", collection, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *sqlStore) remove(ctx context.Context, account, collection, recordID string) error {
	err := s.scope(ctx, account, collection).
		Where("id = ?", recordID).
		Delete(&recordRow{}).Error
	if err != nil {
		return fmt.Errorf("deleting from %s: %w", collection, err)
	}
	return nil
}

func (s *sqlStore) accounts(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.db.WithContext(ctx).Model(&recordRow{}).Distinct().Pluck("account_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	return ids, nil
}

func (s *sqlStore) close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("getting underlying SQL DB: %w", err)
	}
	return sqlDB.Close()
}
