package storage

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ResolveSQLDriver normalizes a driver/dialect pair to a canonical driver
// name. The dialect is a fallback for configs that only name the dialect.
func ResolveSQLDriver(driver, dialect string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(driver))
	if name == "" {
		name = strings.ToLower(strings.TrimSpace(dialect))
	}
	switch name {
	case "sqlite", "sqlite3":
		return "sqlite", nil
	case "postgres", "postgresql", "pgx":
		return "postgres", nil
	case "mysql", "mariadb":
		return "mysql", nil
	case "":
		return "", fmt.Errorf("storage driver is required")
	default:
		return "", fmt.Errorf("unsupported storage driver: %s", name)
	}
}

// OpenGorm opens a GORM handle for a resolved driver name.
func OpenGorm(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", driver)
	}
	return gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
}
