// Package notify is the outbound event surface for phase transitions. The core
// publishes events after a successful transition; delivery, retry, and fan-out
// belong to the consumer behind the Publisher interface. Publishing is
// best-effort: a failed publish never rolls back the transition it announces.
package notify

import (
	"context"
	"encoding/json"
	"io"
	"time"
)

// Event describes one committed phase change.
type Event struct {
	ProjectID int64     `json:"project_id"`
	PhaseID   int64     `json:"phase_id"`
	Action    string    `json:"action"`
	NewStatus string    `json:"new_status"`
	ActorID   string    `json:"actor_id"`
	At        time.Time `json:"at"`
}

// Publisher delivers events to an external channel.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// WriterPublisher writes one JSON line per event. It is the default sink for
// the CLI; a real deployment would swap in a queue-backed publisher.
type WriterPublisher struct {
	Out io.Writer
}

func (p *WriterPublisher) Publish(_ context.Context, ev Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = p.Out.Write(data)
	return err
}
