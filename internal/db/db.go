package db

import (
	"fmt" // Error formatting

	"gorm.io/driver/mysql"    // MySQL driver for GORM
	"gorm.io/driver/postgres" // PostgreSQL driver for GORM
	"gorm.io/gorm"            // GORM ORM library
	"gorm.io/gorm/logger"     // GORM logger levels
)

// Dialector picks the GORM dialector for the configured driver
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "", "mysql":
		return mysql.Open(dsn), nil
	case "postgres", "postgresql":
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Open connects to the database; production mode silences per-query logging
func Open(driver, dsn string, isProd bool) (*gorm.DB, error) {
	dialector, err := Dialector(driver, dsn)
	if err != nil {
		return nil, err
	}
	cfg := &gorm.Config{TranslateError: true} // Map driver errors to gorm.ErrDuplicatedKey and friends
	if isProd {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}
	return gorm.Open(dialector, cfg)
}
