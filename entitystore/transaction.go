package entitystore

// TxState is the lifecycle state of a unit of work's transaction scope.
type TxState int

const (
	TxNone TxState = iota
	TxActive
	TxCommitted
	TxRolledBack
)

func (s TxState) String() string {
	switch s {
	case TxNone:
		return "none"
	case TxActive:
		return "active"
	case TxCommitted:
		return "committed"
	case TxRolledBack:
		return "rolled back"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether the scope has been ended by a commit or rollback.
func (s TxState) IsTerminal() bool {
	return s == TxCommitted || s == TxRolledBack
}
