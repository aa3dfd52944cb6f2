// Package handoff passes a draft to a separately opened preview window.
//
// A value is stored under a fixed key per document kind and consumed on
// first read: the store is a one-shot channel, not a durable database.
package handoff

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lvillar/docsmith"
	"github.com/lvillar/docsmith/record"
)

// DefaultTTL bounds how long an unconsumed payload is kept.
const DefaultTTL = 10 * time.Minute

// ErrNotFound is returned when no payload is waiting under a key.
var ErrNotFound = errors.New("handoff: not found")

// Store is a consume-once key-value store.
type Store interface {
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Take returns the value and deletes it. A second Take of the same key
	// fails with ErrNotFound.
	Take(ctx context.Context, key string) ([]byte, error)
}

// Key returns the store key for kind. A non-empty session namespaces the
// key so concurrent sessions do not collide.
func Key(kind docsmith.Kind, session string) string {
	if session == "" {
		return kind.PreviewKey()
	}
	return session + ":" + kind.PreviewKey()
}

// Payload is the draft handed to the preview window.
type Payload struct {
	Kind     docsmith.Kind   `json:"kind"`
	Template string          `json:"template"`
	Accent   string          `json:"accent"`
	Record   json.RawMessage `json:"record"`
}

// NewPayload encodes rec with its presentation settings.
func NewPayload(rec record.Record, template, accent string) (*Payload, error) {
	if rec == nil {
		return nil, fmt.Errorf("handoff: %w: nil record", docsmith.ErrInvalidParam)
	}
	data, err := record.Encode(rec)
	if err != nil {
		return nil, fmt.Errorf("handoff: encoding record: %w", err)
	}
	return &Payload{Kind: rec.Kind(), Template: template, Accent: accent, Record: data}, nil
}

// Decode returns the payload record.
func (p *Payload) Decode() (record.Record, error) {
	return record.Decode(p.Kind, p.Record)
}

// Channel stashes and consumes payloads in a Store.
type Channel struct {
	store Store
	ttl   time.Duration
}

// NewChannel returns a Channel over store. A non-positive ttl uses DefaultTTL.
func NewChannel(store Store, ttl time.Duration) *Channel {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Channel{store: store, ttl: ttl}
}

// Stash stores p for the preview of session.
func (c *Channel) Stash(ctx context.Context, session string, p *Payload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("handoff: %w", err)
	}
	return c.store.Put(ctx, Key(p.Kind, session), data, c.ttl)
}

// Consume takes the payload stashed for kind and session.
func (c *Channel) Consume(ctx context.Context, session string, kind docsmith.Kind) (*Payload, error) {
	data, err := c.store.Take(ctx, Key(kind, session))
	if err != nil {
		return nil, err
	}
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("handoff: decoding payload: %w", err)
	}
	if p.Kind != kind {
		return nil, fmt.Errorf("handoff: %w: payload is %s, want %s", docsmith.ErrInvalidParam, p.Kind, kind)
	}
	return &p, nil
}
