package migration

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRestoreTimeout means the restore reached no terminal state within
	// the attempt budget or the deadline.
	ErrRestoreTimeout = errors.New("restore timed out")

	// ErrNoObjects means the export returned nothing to migrate.
	ErrNoObjects = errors.New("no objects found to migrate")

	// ErrNothingImported means every record of an import failed.
	ErrNothingImported = errors.New("no object could be imported")

	// ErrInvalidTransition is returned when the run tries to skip a stage.
	ErrInvalidTransition = errors.New("invalid stage transition")
)

// RestoreFailedError is returned when the store reports the restore failed.
type RestoreFailedError struct {
	Reason string
	Err    error
}

func (e *RestoreFailedError) Error() string {
	return fmt.Sprintf("restore failed: %s", e.Reason)
}

func (e *RestoreFailedError) Unwrap() error { return e.Err }

// FetchError is returned when a page of the export could not be read.
type FetchError struct {
	Status int
	Body   string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("failed to fetch objects: %v", e.Err)
	}
	return fmt.Sprintf("failed to fetch objects: status %d: %s", e.Status, e.Body)
}

func (e *FetchError) Unwrap() error { return e.Err }

// SchemaError is returned when a collection descriptor could not be read
// or created.
type SchemaError struct {
	Op     string
	Class  string
	Status int
	Body   string
	Err    error
}

func (e *SchemaError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Class, e.Err)
	}
	return fmt.Sprintf("failed to %s %s: status %d: %s", e.Op, e.Class, e.Status, e.Body)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// ObjectImportError describes one record that could not be imported. It is
// never fatal on its own; see ImportResult.
type ObjectImportError struct {
	Index  int
	ID     string
	Status int
	Body   string
}

func (e *ObjectImportError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("failed to import object %d (%s): %s", e.Index, e.ID, e.Body)
	}
	return fmt.Sprintf("failed to import object %d (%s): status %d: %s", e.Index, e.ID, e.Status, e.Body)
}

// VerificationError is returned when the promoted collection does not hold
// exactly the imported records.
type VerificationError struct {
	Result *VerifyResult
}

func (e *VerificationError) Error() string {
	r := e.Result
	var b strings.Builder
	fmt.Fprintf(&b, "verification failed: expected %d objects, found %d", r.Expected, r.Found)
	if len(r.Missing) > 0 {
		fmt.Fprintf(&b, ", %d missing", len(r.Missing))
	}
	if len(r.Mismatched) > 0 {
		fmt.Fprintf(&b, ", %d mismatched", len(r.Mismatched))
	}
	return b.String()
}

// StageError wraps a fatal error with the stage the run was trying to reach.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("migration aborted before %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// FailedStage returns the stage of a StageError, or StageAborted when err
// is not one.
func FailedStage(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return StageAborted
}
