package librarytest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/entitystore-go/entitystore"
	"github.com/AntonStoeckl/entitystore-go/entitystore/memengine"
	"github.com/AntonStoeckl/entitystore-go/entitystore/sqliteengine"
)

const (
	typeMemory = "memory"
	typeSQLite = "sqlite"
)

// Wrapper gives a test one engine and the unit of work factory handlers are built with.
type Wrapper struct {
	Engine entitystore.Engine
	UOWs   entitystore.UnitOfWorkFactory
}

// CreateWrapperWithTestConfig creates the engine selected by ENGINE_TYPE. It is closed by t.Cleanup.
func CreateWrapperWithTestConfig(t testing.TB) Wrapper {
	t.Helper()

	engineTypeFromEnv := strings.ToLower(os.Getenv("ENGINE_TYPE"))

	switch engineTypeFromEnv {
	case typeMemory, "":
		engine, err := memengine.NewEngine()
		require.NoError(t, err, "error creating the memory engine in test setup")

		return Wrapper{Engine: engine, UOWs: entitystore.NewUnitOfWorkFactory(engine)}

	case typeSQLite:
		db, err := sqliteengine.Open(filepath.Join(t.TempDir(), "library.db"))
		require.NoError(t, err, "error opening the sqlite database in test setup")
		t.Cleanup(func() { _ = db.Close() })

		_, err = sqliteengine.Migrate(context.Background(), db)
		require.NoError(t, err, "error migrating the sqlite database in test setup")

		engine, err := sqliteengine.NewEngineFromSQLDB(db)
		require.NoError(t, err, "error creating the sqlite engine in test setup")

		return Wrapper{Engine: engine, UOWs: entitystore.NewUnitOfWorkFactory(engine)}

	default:
		panic(fmt.Sprintf("unsupported engine type from env: %s", engineTypeFromEnv))
	}
}

// NewUnitOfWork returns a fresh unit of work, e.g. to verify what handlers committed.
func (w Wrapper) NewUnitOfWork() *entitystore.UnitOfWork {
	return w.UOWs.New()
}
