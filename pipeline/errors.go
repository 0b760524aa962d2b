package pipeline

import (
	"errors"
	"fmt"
)

// Kind classifies a stage failure so callers can branch on category
// without string matching. See StageError.
type Kind int

const (
	// KindUnsupportedFormat: the effective MIME type is not in the allowed set.
	KindUnsupportedFormat Kind = iota
	// KindParseFailed: the format extractor produced no text.
	KindParseFailed
	// KindEmptyDocument: parsed text is whitespace-only.
	KindEmptyDocument
	// KindStorageTransient: object-store or network error, safe to retry.
	KindStorageTransient
	// KindStorageTerminal: NotFound or AccessDenied from the object store.
	KindStorageTerminal
	// KindStageTimeout: a stage exceeded its budget.
	KindStageTimeout
	// KindEnrichmentDegraded: TF-IDF or LLM enrichment failed; job still succeeds.
	KindEnrichmentDegraded
	// KindPersistenceFailed: the database transaction could not commit.
	KindPersistenceFailed
)

func (k Kind) String() string {
	switch k {
	case KindUnsupportedFormat:
		return "UnsupportedFormat"
	case KindParseFailed:
		return "ParseFailed"
	case KindEmptyDocument:
		return "EmptyDocument"
	case KindStorageTransient:
		return "StorageTransient"
	case KindStorageTerminal:
		return "StorageTerminal"
	case KindStageTimeout:
		return "StageTimeout"
	case KindEnrichmentDegraded:
		return "EnrichmentDegraded"
	case KindPersistenceFailed:
		return "PersistenceFailed"
	default:
		return "Unknown"
	}
}

// Retryable reports whether a failure of this kind should be retried by
// the orchestrator's backoff loop. StageTimeout is retried once by the
// orchestrator before being treated as terminal; callers that need that
// one-shot distinction inspect Kind directly rather than Retryable.
func (k Kind) Retryable() bool {
	switch k {
	case KindStorageTransient, KindPersistenceFailed, KindStageTimeout:
		return true
	default:
		return false
	}
}

// StageError wraps a failure with the stage that produced it and a Kind,
// so a job record can report structured information against fileId
// instead of a bare error string.
type StageError struct {
	Stage string
	Kind  Kind
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline: stage %s: %s: %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Is supports errors.Is(err, &StageError{Kind: KindUnsupportedFormat})
// style checks by kind rather than by wrapped-error identity.
func (e *StageError) Is(target error) bool {
	var other *StageError
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

func newStageError(stage string, kind Kind, err error) *StageError {
	return &StageError{Stage: stage, Kind: kind, Err: err}
}

// UnsupportedFormat reports a MIME type outside the allowed set.
func UnsupportedFormat(stage string, err error) *StageError {
	return newStageError(stage, KindUnsupportedFormat, err)
}

// ParseFailed reports an extractor that produced no text.
func ParseFailed(stage string, err error) *StageError {
	return newStageError(stage, KindParseFailed, err)
}

// EmptyDocument reports whitespace-only parsed text.
func EmptyDocument(stage string, err error) *StageError {
	return newStageError(stage, KindEmptyDocument, err)
}

// StorageTransient reports a retryable object-store failure.
func StorageTransient(stage string, err error) *StageError {
	return newStageError(stage, KindStorageTransient, err)
}

// StorageTerminal reports a NotFound/AccessDenied object-store failure.
func StorageTerminal(stage string, err error) *StageError {
	return newStageError(stage, KindStorageTerminal, err)
}

// StageTimeout reports a stage that exceeded its budget.
func StageTimeout(stage string, err error) *StageError {
	return newStageError(stage, KindStageTimeout, err)
}

// EnrichmentDegraded reports a non-fatal enrichment failure.
func EnrichmentDegraded(stage string, err error) *StageError {
	return newStageError(stage, KindEnrichmentDegraded, err)
}

// PersistenceFailed reports a database transaction failure.
func PersistenceFailed(stage string, err error) *StageError {
	return newStageError(stage, KindPersistenceFailed, err)
}

var (
	// ErrJobNotFound is returned when a checkpoint lookup finds no row for a fileId.
	ErrJobNotFound = errors.New("pipeline: job checkpoint not found")

	// ErrUnknownJobType is returned when a queue message carries an
	// unrecognized "type" field.
	ErrUnknownJobType = errors.New("pipeline: unknown job type")

	// ErrMissingField is returned when a required job field is empty.
	ErrMissingField = errors.New("pipeline: required job field missing")
)
