package store

import (
	"fmt"

	"go.uber.org/zap"
)

// Driver names a Store backend.
type Driver string

const (
	DriverMemory Driver = "memory"
	DriverSQLite Driver = "sqlite"
)

// Open constructs the backend selected by driver.
func Open(driver Driver, sqlitePath string, logger *zap.Logger) (Store, error) {
	switch driver {
	case DriverMemory, "":
		return NewMemoryStore(), nil
	case DriverSQLite:
		return NewSQLite(sqlitePath, logger)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
