// Package repository persists accepted submissions.
package repository

import (
	"context"

	"github.com/okian/portfolio/internal/domain/model"
)

// Store provides append-only access to submission records.
type Store interface {
	// Append adds one record and returns the record count after the write.
	Append(ctx context.Context, rec model.SubmissionRecord) (int, error)

	// List returns every record in insertion order.
	List(ctx context.Context) ([]model.SubmissionRecord, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)
}
