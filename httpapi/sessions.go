package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/lvillar/docsmith"
	"github.com/lvillar/docsmith/export"
	"github.com/lvillar/docsmith/workspace"
)

const maxNotices = 10

// session is one editor: a workspace and the controller exporting it.
type session struct {
	id  string
	ws  *workspace.Workspace
	ctl *export.Controller

	mu       sync.Mutex
	notices  []export.Notice
	lastUsed time.Time
}

func (s *session) Notify(_ context.Context, n export.Notice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, n)
	if len(s.notices) > maxNotices {
		s.notices = s.notices[len(s.notices)-maxNotices:]
	}
}

func (s *session) touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

func (s *session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

type noticeView struct {
	Level       string `json:"level"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type sessionView struct {
	ID          string            `json:"id"`
	Kind        docsmith.Kind     `json:"kind"`
	Template    string            `json:"template"`
	AccentColor string            `json:"accentColor"`
	View        string            `json:"view"`
	Side        string            `json:"side,omitempty"`
	State       string            `json:"state"`
	Formats     []docsmith.Format `json:"formats"`
	Record      json.RawMessage   `json:"record"`
	Notices     []noticeView      `json:"notices"`
}

func (s *session) view() (sessionView, error) {
	d := s.ws.Draft()
	rec, err := json.Marshal(d.Record)
	if err != nil {
		return sessionView{}, fmt.Errorf("httpapi: encoding record: %w", err)
	}
	v := sessionView{
		ID:          s.id,
		Kind:        s.ws.Kind(),
		Template:    d.Template,
		AccentColor: d.Accent,
		View:        s.ws.View().String(),
		State:       s.ctl.State().String(),
		Formats:     s.ws.Kind().Formats(),
		Record:      rec,
		Notices:     []noticeView{},
	}
	if s.ws.Kind() == docsmith.KindBusinessCard {
		v.Side = s.ws.Side()
	}
	s.mu.Lock()
	for _, n := range s.notices {
		level := "info"
		if n.Level == export.LevelError {
			level = "error"
		}
		v.Notices = append(v.Notices, noticeView{Level: level, Title: n.Title, Description: n.Description})
	}
	s.mu.Unlock()
	return v, nil
}

// registry holds live sessions and expires idle ones.
type registry struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
}

func newRegistry(ttl time.Duration) *registry {
	return &registry{sessions: make(map[string]*session), ttl: ttl}
}

func (r *registry) add(s *session) {
	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()
}

func (r *registry) get(id string, now time.Time) (*session, error) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", errSessionNotFound, id)
	}
	s.touch(now)
	return s, nil
}

func (r *registry) remove(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		s.ws.Close()
	}
	return ok
}

// expire closes sessions idle since before now-ttl and returns how many.
// Sessions in the middle of an export are kept.
func (r *registry) expire(now time.Time) int {
	var stale []*session
	r.mu.Lock()
	for id, s := range r.sessions {
		if now.Sub(s.idleSince()) > r.ttl && !s.ctl.Busy() {
			stale = append(stale, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()
	for _, s := range stale {
		s.ws.Close()
	}
	return len(stale)
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *registry) closeAll() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*session)
	r.mu.Unlock()
	for _, s := range all {
		s.ws.Close()
	}
}
