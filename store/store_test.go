package store

import (
	"testing"

	"github.com/docpipeline/indexer/chunk"
)

func TestDocumentIDForFindsMatch(t *testing.T) {
	lineage := []chunk.Lineage{
		{ChildID: "c1", DocumentID: "doc-a"},
		{ChildID: "c2", DocumentID: "doc-b"},
	}

	if got := documentIDFor(lineage, "c2"); got != "doc-b" {
		t.Fatalf("got %q, want %q", got, "doc-b")
	}
}

func TestDocumentIDForNoMatchReturnsEmpty(t *testing.T) {
	lineage := []chunk.Lineage{{ChildID: "c1", DocumentID: "doc-a"}}

	if got := documentIDFor(lineage, "missing"); got != "" {
		t.Fatalf("got %q, want empty string", got)
	}
}

func TestDefaultConfigAppliesPoolDefaults(t *testing.T) {
	cfg := DefaultConfig("postgres://example")
	if cfg.MaxOpenConns != 25 || cfg.MaxIdleConns != 5 {
		t.Fatalf("unexpected pool defaults: %+v", cfg)
	}
	if cfg.DSN != "postgres://example" {
		t.Fatalf("got dsn %q, want %q", cfg.DSN, "postgres://example")
	}
}
