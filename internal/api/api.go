package api

import "context"

// Attempts defines read access to the attempt bundles under the data
// directory. The file-backed scanner (attempts.Store) implements it; the
// review server and CLI consume it.
type Attempts interface {
	// ListAttempts returns every attempt_* bundle, sorted by directory name.
	ListAttempts(ctx context.Context) ([]Attempt, error)

	// GetAttempt returns details for one bundle.
	// Returns NotFoundError when the bundle does not exist and
	// ValidationError when id is not a plain directory name.
	GetAttempt(ctx context.Context, id string) (*AttemptDetails, error)

	// FileStats lists the relevant top-level files of a bundle with sizes
	// and modification times.
	FileStats(ctx context.Context, id string) ([]FileStat, error)

	// ContentRoot is the directory report and figure paths are relative to.
	ContentRoot() string
}

// Labels defines persistence for human review labels.
type Labels interface {
	// SaveLabels stores a record, replacing any previous record for the
	// same attempt. The record must carry a string attemptId.
	SaveLabels(rec LabelRecord) error

	// AllLabels returns every stored record keyed by attempt id.
	// Files that cannot be read are skipped.
	AllLabels() (map[string]LabelRecord, error)

	// GetLabels returns the record for one attempt, or NotFoundError.
	GetLabels(attemptID string) (LabelRecord, error)

	// ClearLabels removes every stored record.
	ClearLabels() error
}
