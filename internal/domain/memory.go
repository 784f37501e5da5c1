package domain

import "time"

// MemoryRecord is a persisted (request, generated command) pair used for
// few-shot retrieval. Records are never mutated after insertion.
type MemoryRecord struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
	Embedding []float32 `json:"-"`
}

// MemoryMatch is a ranked similarity hit; lower Distance means more similar.
type MemoryMatch struct {
	Record   MemoryRecord
	Distance float64
}
