package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/docpipeline/indexer/chunk"
	"github.com/docpipeline/indexer/enrich"
)

// Store persists a file's chunks and tracks stage checkpoints. It
// implements pipeline.Store.
type Store struct {
	db *DB
}

// New wraps an open DB in a Store.
func New(db *DB) *Store {
	return &Store{db: db}
}

// DeleteFile removes every parent chunk, child chunk, and lineage row for
// fileID. Child chunks and lineage cascade by file_id directly rather than
// joining through parents, so a delete job never depends on parent rows
// still being present.
func (s *Store) DeleteFile(ctx context.Context, fileID string) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		return deleteFileRows(ctx, tx, fileID)
	})
}

func deleteFileRows(ctx context.Context, tx *sql.Tx, fileID string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM chunk_lineage WHERE file_id = $1`, fileID); err != nil {
		return fmt.Errorf("store: delete lineage: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM child_chunks WHERE file_id = $1`, fileID); err != nil {
		return fmt.Errorf("store: delete children: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM parent_chunks WHERE file_id = $1`, fileID); err != nil {
		return fmt.Errorf("store: delete parents: %w", err)
	}
	return nil
}

// SaveFile replaces fileID's rows with the given parents, children, and
// lineage in a single transaction, giving the Persist stage idempotent
// redelivery semantics: reprocessing the same file twice produces the
// same final rows rather than duplicates.
func (s *Store) SaveFile(ctx context.Context, fileID string, parents []enrich.EnrichedParentChunk, children []chunk.ChildChunk, lineage []chunk.Lineage) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		if err := deleteFileRows(ctx, tx, fileID); err != nil {
			return err
		}

		for _, p := range parents {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO parent_chunks
					(id, file_id, document_id, ordinal, content, section_path,
					 token_count, char_count, reading_time_seconds,
					 keywords, entities, hypothetical_questions)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			`,
				p.ID, p.FileID, p.DocumentID, p.Ordinal, p.Content, p.SectionPath,
				p.TokenCount, p.CharCount, p.ReadingTimeSeconds,
				pq.Array(p.Keywords), pq.Array(p.Entities), pq.Array(p.HypotheticalQuestions),
			)
			if err != nil {
				return fmt.Errorf("store: insert parent %s: %w", p.ID, err)
			}
		}

		for _, c := range children {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO child_chunks
					(id, parent_id, file_id, document_id, ordinal, content, token_count, overlap_token_count)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			`,
				c.ID, c.ParentID, fileID, documentIDFor(lineage, c.ID), c.Ordinal, c.Content, c.TokenCount, c.OverlapEnd-c.OverlapStart,
			)
			if err != nil {
				return fmt.Errorf("store: insert child %s: %w", c.ID, err)
			}
		}

		for _, l := range lineage {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO chunk_lineage (child_id, parent_id, document_id, file_id)
				VALUES ($1, $2, $3, $4)
			`,
				l.ChildID, l.ParentID, l.DocumentID, l.FileID,
			)
			if err != nil {
				return fmt.Errorf("store: insert lineage %s: %w", l.ChildID, err)
			}
		}

		return nil
	})
}

func documentIDFor(lineage []chunk.Lineage, childID string) string {
	for _, l := range lineage {
		if l.ChildID == childID {
			return l.DocumentID
		}
	}
	return ""
}

// SaveCheckpoint records stage's output for fileID, overwriting any prior
// checkpoint for the same (fileID, stage) pair.
func (s *Store) SaveCheckpoint(ctx context.Context, fileID, stage string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO job_checkpoints (file_id, stage, data, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (file_id, stage) DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at
	`, fileID, stage, data)
	if err != nil {
		return fmt.Errorf("store: save checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint returns the most recently saved checkpoint for
// (fileID, stage), if any.
func (s *Store) LoadCheckpoint(ctx context.Context, fileID, stage string) ([]byte, bool, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT data FROM job_checkpoints WHERE file_id = $1 AND stage = $2
	`, fileID, stage).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: load checkpoint: %w", err)
	}
	return data, true, nil
}
