package queue

import (
	"testing"

	"github.com/docpipeline/indexer/pipeline"
)

func TestSubjectForPriorityAlwaysWins(t *testing.T) {
	if got := subjectFor(pipeline.JobIndex, true); got != PrioritySubject {
		t.Fatalf("got %q, want %q", got, PrioritySubject)
	}
	if got := subjectFor(pipeline.JobDelete, true); got != PrioritySubject {
		t.Fatalf("got %q, want %q", got, PrioritySubject)
	}
}

func TestSubjectForRoutesByJobType(t *testing.T) {
	if got := subjectFor(pipeline.JobIndex, false); got != IndexSubject {
		t.Fatalf("got %q, want %q", got, IndexSubject)
	}
	if got := subjectFor(pipeline.JobDelete, false); got != DeleteSubject {
		t.Fatalf("got %q, want %q", got, DeleteSubject)
	}
}
