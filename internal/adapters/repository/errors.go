package repository

import (
	"errors"
	"fmt"
)

// Sentinel kinds for store errors.
var (
	ErrNotFound      = errors.New("sequence not found")
	ErrInvalidNodeID = errors.New("invalid node id")
)

// InvalidNodeError reports a snowflake node id the generator rejected.
type InvalidNodeError struct {
	NodeID int64
	Err    error
}

func (e *InvalidNodeError) Error() string {
	return fmt.Sprintf("node id %d: %v", e.NodeID, e.Err)
}

// Unwrap lets errors.Is(err, ErrInvalidNodeID) succeed.
func (e *InvalidNodeError) Unwrap() []error { return []error{ErrInvalidNodeID, e.Err} }
