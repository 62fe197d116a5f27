package btree

import "fmt"

// InsertError wraps any failure encountered during Tree.Insert: the
// aggregate "unable to insert" outcome. The triggering cause (a duplicate
// key, a read-only store, a wrapped storage or record error) is reachable
// through Unwrap. Grounded in
// sukryu-golite/pkg/adapters/lsmtree/errors.go's ErrCompactionError shape.
type InsertError struct {
	Key any
	Err error
}

func (e *InsertError) Error() string {
	return fmt.Sprintf("btree: insert %v: %v", e.Key, e.Err)
}

func (e *InsertError) Unwrap() error { return e.Err }
