package adapters

import "context"

// DBAdapter defines the interface for database operations needed by the SQL engines.
type DBAdapter interface {
	// Query runs a read outside any transaction. useReplica asks for the replica, if one is configured.
	Query(ctx context.Context, query string, useReplica bool) (DBRows, error)
	Begin(ctx context.Context, isolation IsolationLevel) (DBTx, error)
}

// DBTx is an open transaction on the primary.
type DBTx interface {
	Query(ctx context.Context, query string) (DBRows, error)
	Exec(ctx context.Context, query string) (DBResult, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// DBRows defines the interface for query result rows.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// DBResult defines the interface for execution results.
type DBResult interface {
	RowsAffected() (int64, error)
}

// IsolationLevel of a transaction. The zero value leaves the choice to the database.
type IsolationLevel int

const (
	IsolationDefault IsolationLevel = iota
	IsolationReadCommitted
	IsolationRepeatableRead
	IsolationSerializable
)

func (l IsolationLevel) String() string {
	switch l {
	case IsolationReadCommitted:
		return "read committed"
	case IsolationRepeatableRead:
		return "repeatable read"
	case IsolationSerializable:
		return "serializable"
	default:
		return "default"
	}
}
