package notify

import (
	"PlayFinder/models"
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Sink receives lifecycle events once the change that caused them is committed.
// Presenting them (toast, push, email) is up to the sink.
type Sink interface {
	Notify(ctx context.Context, ev models.Event) error
}

// Inbox is a sink users can read their events back from
type Inbox interface {
	Sink
	List(ctx context.Context, userID string) ([]models.Event, error)
	Clear(ctx context.Context, userID string) error
}

// LogSink writes every event to the log
type LogSink struct {
	Log logrus.FieldLogger
}

func (s LogSink) Notify(_ context.Context, ev models.Event) error {
	s.Log.WithFields(logrus.Fields{
		"event":     ev.Kind,
		"invite_id": ev.InviteID,
		"user_id":   ev.UserID,
	}).Info("notification")
	return nil
}

// Multi hands every event to all its sinks. A failing sink is logged and
// doesn't stop the others: the operation behind the event already happened.
type Multi struct {
	Sinks []Sink
	Log   logrus.FieldLogger
}

func (m Multi) Notify(ctx context.Context, ev models.Event) error {
	for _, s := range m.Sinks {
		if err := s.Notify(ctx, ev); err != nil && m.Log != nil {
			m.Log.WithError(err).WithField("event", ev.Kind).Warn("notification sink failed")
		}
	}
	return nil
}

// Recorder is an in-memory Inbox, newest event first per user
type Recorder struct {
	mu     sync.Mutex
	events map[string][]models.Event
	limit  int
}

func NewRecorder(limit int) *Recorder {
	return &Recorder{events: make(map[string][]models.Event), limit: limit}
}

func (r *Recorder) Notify(_ context.Context, ev models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := append([]models.Event{ev}, r.events[ev.UserID]...)
	if r.limit > 0 && len(list) > r.limit {
		list = list[:r.limit]
	}
	r.events[ev.UserID] = list
	return nil
}

func (r *Recorder) List(_ context.Context, userID string) ([]models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Event, len(r.events[userID]))
	copy(out, r.events[userID])
	return out, nil
}

func (r *Recorder) Clear(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.events, userID)
	return nil
}
