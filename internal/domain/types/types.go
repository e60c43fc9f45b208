// Package types contains common types used across the application
package types

import "time"

// SequenceRecord is a stored, normalized sequence.
type SequenceRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Sequence  string    `json:"sequence"`
	Length    int       `json:"length"`
	GCContent float64   `json:"gc_content"`
	CreatedAt time.Time `json:"created_at"`
}
