// Package queue binds the orchestrator to NATS JetStream: a durable
// consumer drains file.index and file.delete jobs, with a dedicated
// priority subject for deletes drained ahead of ordinary indexing work.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/docpipeline/indexer/pipeline"
)

const (
	streamName = "DOCPIPELINE_JOBS"

	// IndexSubject carries file.index jobs.
	IndexSubject = "docpipeline.jobs.index"
	// DeleteSubject carries ordinary file.delete jobs.
	DeleteSubject = "docpipeline.jobs.delete"
	// PrioritySubject carries file.delete jobs that must be drained before
	// IndexSubject and DeleteSubject, per the orchestrator's elevated
	// priority for deletes.
	PrioritySubject = "docpipeline.jobs.priority"

	durableConsumer         = "docpipeline-jobs"
	durablePriorityConsumer = "docpipeline-jobs-priority"
)

// Consumer pulls jobs from JetStream, always draining the priority
// subscription before the ordinary one so file.delete jobs published to
// PrioritySubject run ahead of queued file.index work.
type Consumer struct {
	js       nats.JetStreamContext
	priority *nats.Subscription
	main     *nats.Subscription
}

// NewConsumer connects to JetStream, ensures the backing stream exists,
// and binds two durable pull consumers: one for the priority subject, one
// for everything else.
func NewConsumer(nc *nats.Conn) (*Consumer, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("queue: jetstream context: %w", err)
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:     streamName,
		Subjects: []string{IndexSubject, DeleteSubject, PrioritySubject},
	})
	if err != nil && err != nats.ErrStreamNameAlreadyInUse {
		return nil, fmt.Errorf("queue: add stream: %w", err)
	}

	priority, err := js.PullSubscribe(PrioritySubject, durablePriorityConsumer, nats.ManualAck())
	if err != nil {
		return nil, fmt.Errorf("queue: subscribe priority: %w", err)
	}

	main, err := js.PullSubscribe(">", durableConsumer,
		nats.ManualAck(),
		nats.BindStream(streamName),
	)
	if err != nil {
		return nil, fmt.Errorf("queue: subscribe main: %w", err)
	}

	return &Consumer{js: js, priority: priority, main: main}, nil
}

// Next polls both subscriptions every 200ms, the priority subscription
// always checked first, until a job is available or ctx is done. The
// returned ack func must not be called before the job's processing has
// finished (persistence committed, or the job failed terminally), matching
// the at-least-once redelivery semantics the orchestrator's idempotent
// fileId handling depends on.
func (c *Consumer) Next(ctx context.Context) (pipeline.Job, func(), error) {
	for {
		if job, ack, ok, err := c.fetchOne(c.priority); err != nil {
			return pipeline.Job{}, nil, err
		} else if ok {
			return job, ack, nil
		}
		if job, ack, ok, err := c.fetchOne(c.main); err != nil {
			return pipeline.Job{}, nil, err
		} else if ok {
			return job, ack, nil
		}

		select {
		case <-ctx.Done():
			return pipeline.Job{}, nil, ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
}

func (c *Consumer) fetchOne(sub *nats.Subscription) (pipeline.Job, func(), bool, error) {
	msgs, err := sub.Fetch(1, nats.MaxWait(50*time.Millisecond))
	if err != nil {
		if err == nats.ErrTimeout {
			return pipeline.Job{}, nil, false, nil
		}
		return pipeline.Job{}, nil, false, fmt.Errorf("queue: fetch: %w", err)
	}
	if len(msgs) == 0 {
		return pipeline.Job{}, nil, false, nil
	}

	msg := msgs[0]
	if sub == c.main && msg.Subject == PrioritySubject {
		// The priority consumer delivers its own copy of this message.
		_ = msg.Ack()
		return pipeline.Job{}, nil, false, nil
	}
	var job pipeline.Job
	if err := json.Unmarshal(msg.Data, &job); err != nil {
		_ = msg.Ack() // malformed messages are dropped, never redelivered
		return pipeline.Job{}, nil, false, nil
	}

	ack := func() { _ = msg.Ack() }
	return job, ack, true, nil
}

// Publish enqueues a job onto the stream. Delete jobs addressed with
// priority=true bypass the ordinary index/delete backlog by landing on
// PrioritySubject instead.
func Publish(js nats.JetStreamContext, job pipeline.Job, priority bool) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	subject := subjectFor(job.Type, priority)
	if _, err := js.Publish(subject, data); err != nil {
		return fmt.Errorf("queue: publish: %w", err)
	}
	return nil
}

func subjectFor(t pipeline.JobType, priority bool) string {
	if priority {
		return PrioritySubject
	}
	if t == pipeline.JobDelete {
		return DeleteSubject
	}
	return IndexSubject
}
