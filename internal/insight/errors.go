package insight

import "fmt"

// GenerationError covers malformed or unparsable content-service responses
// and quota/auth failures. Never retried.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("insight generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// StorageError covers read/write failures against the persistent store.
// Never retried.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ValidationError rejects an operation before any write happens.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// PartialApplyError reports a best-effort batch price update that stopped
// partway. Already-applied items are not rolled back.
type PartialApplyError struct {
	Applied int
	Total   int
	Err     error
}

func (e *PartialApplyError) Error() string {
	return fmt.Sprintf("price update applied to %d of %d items before failing: %v", e.Applied, e.Total, e.Err)
}

func (e *PartialApplyError) Unwrap() error { return e.Err }
