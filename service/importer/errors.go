package importer

import (
	"errors"
	"fmt"
)

// Validation failures are rejected synchronously: no phase transition, no
// store or network call happens.
var (
	ErrEmptySourceURL = errors.New("source URL must not be empty")
	ErrEmptySelection = errors.New("no songs selected for import")
	ErrImportBusy     = errors.New("an import session is already active")
	ErrNoActiveImport = errors.New("no import session is in preview")
	ErrImportInFlight = errors.New("the import is being written and cannot be cancelled")
	ErrSetlistExists  = errors.New("the concert already has a setlist; confirm the replacement to continue")
)

// ScrapeError means the source setlist could not be loaded. Nothing was
// written, so the operation can be retried freely.
type ScrapeError struct {
	Err error
}

func (e *ScrapeError) Error() string {
	return fmt.Sprintf("could not load the source setlist (nothing was changed, retry freely): %v", e.Err)
}

func (e *ScrapeError) Unwrap() error { return e.Err }

// CommitError means the record store failed part way through the
// delete-then-insert pair. The destination setlist may be partially
// modified; its message must never read like a ScrapeError.
type CommitError struct {
	Err error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("writing the setlist failed and the destination may be partially modified; check the concert's current setlist before retrying: %v", e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }
