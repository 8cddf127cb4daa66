package sqlstore

import (
	"github.com/doug-martin/goqu/v9/exp"
)

// Dialect supplies what differs between databases.
type Dialect interface {
	// GoquDialect is the registered goqu dialect name, e.g. "postgres" or "sqlite3".
	GoquDialect() string
	// EngineName is used as the engine label in logs and metrics.
	EngineName() string
	// PayloadValue converts a JSON payload into the value written to the payload column.
	PayloadValue(payloadJSON []byte) any
	// PayloadMatches is a boolean expression that is true when the payload's top-level key equals val.
	PayloadMatches(key, val string) (exp.Expression, error)
	// IsUniqueViolation reports whether err was raised by a unique or primary key constraint.
	IsUniqueViolation(err error) bool
	// IsConcurrencyConflict reports whether err is a serialization failure, deadlock or busy error.
	IsConcurrencyConflict(err error) bool
}

// TableNames of the two tables used by the store.
type TableNames struct {
	Entities   string
	UniqueKeys string
}

// DefaultTableNames are the names created by the bundled migrations.
var DefaultTableNames = TableNames{
	Entities:   "entities",
	UniqueKeys: "entity_unique_keys",
}
