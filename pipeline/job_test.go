package pipeline

import (
	"errors"
	"testing"
)

func TestJobValidateIndexRequiresFilePathAndDocumentID(t *testing.T) {
	job := Job{Type: JobIndex, FileID: "f1"}
	if err := job.Validate(); !errors.Is(err, ErrMissingField) {
		t.Fatalf("got %v, want ErrMissingField", err)
	}

	job.FilePath = "s3://bucket/key"
	if err := job.Validate(); !errors.Is(err, ErrMissingField) {
		t.Fatalf("got %v, want ErrMissingField for missing documentId", err)
	}

	job.DocumentID = "doc1"
	if err := job.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestJobValidateDeleteRequiresFilePathOnly(t *testing.T) {
	job := Job{Type: JobDelete, FileID: "f1", FilePath: "s3://bucket/key"}
	if err := job.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	job.FilePath = ""
	if err := job.Validate(); !errors.Is(err, ErrMissingField) {
		t.Fatalf("got %v, want ErrMissingField", err)
	}
}

func TestJobValidateRejectsUnknownType(t *testing.T) {
	job := Job{Type: "file.unknown", FileID: "f1"}
	if err := job.Validate(); !errors.Is(err, ErrUnknownJobType) {
		t.Fatalf("got %v, want ErrUnknownJobType", err)
	}
}

func TestJobValidateRequiresFileID(t *testing.T) {
	job := Job{Type: JobIndex}
	if err := job.Validate(); !errors.Is(err, ErrMissingField) {
		t.Fatalf("got %v, want ErrMissingField", err)
	}
}
