// Package vectorindex signals an external vectorization worker after a
// file's chunks have been persisted. This pipeline never writes vectors
// itself — Qdrant is out of scope here. The published event carries plain
// string ids; PointIDs converts such ids into Qdrant's wire-compatible
// point-ID type for a downstream embedder.
package vectorindex

import (
	"context"
	"encoding/json"

	pb "github.com/qdrant/go-client/qdrant"
	"github.com/nats-io/nats.go"

	"github.com/docpipeline/indexer/pipeline"
)

// ReadySubject is the NATS subject a VectorIndexEvent is published to once
// a file's parent/child chunks are committed.
const ReadySubject = "docpipeline.vectorindex.ready"

// Publisher publishes vector-index-ready events over NATS.
type Publisher struct {
	nc *nats.Conn
}

// NewPublisher wraps an existing NATS connection.
func NewPublisher(nc *nats.Conn) *Publisher {
	return &Publisher{nc: nc}
}

// Publish emits the event carrying the ids the downstream vectorizer needs
// to embed and upsert. It does not block on delivery confirmation beyond
// the underlying NATS publish call.
func (p *Publisher) Publish(ctx context.Context, event pipeline.VectorIndexEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.nc.Publish(ReadySubject, data)
}

// PointIDs converts a set of chunk ids into Qdrant's wire-compatible point
// ID type, the shape a downstream embedder expects when it upserts
// directly against the vector index using the ids this pipeline assigned.
func PointIDs(ids []string) []*pb.PointId {
	points := make([]*pb.PointId, len(ids))
	for i, id := range ids {
		points[i] = &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: id}}
	}
	return points
}
