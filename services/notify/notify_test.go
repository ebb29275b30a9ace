package notify_test

import (
	"PlayFinder/models"
	"PlayFinder/services/notify"
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSink struct{}

func (failingSink) Notify(context.Context, models.Event) error { return errors.New("smtp down") }

func TestMultiKeepsGoingWhenASinkFails(t *testing.T) {
	ctx := context.Background()
	logger, hook := test.NewNullLogger()
	rec := notify.NewRecorder(10)
	m := notify.Multi{Sinks: []notify.Sink{failingSink{}, rec, notify.LogSink{Log: logger}}, Log: logger}

	ev := models.Event{Kind: models.EVENT_REQUEST_CREATED, InviteID: "g1", UserID: "creator"}
	require.NoError(t, m.Notify(ctx, ev))

	events, err := rec.List(ctx, "creator")
	require.NoError(t, err)
	assert.Equal(t, []models.Event{ev}, events)

	require.Len(t, hook.Entries, 2)
	assert.Equal(t, logrus.WarnLevel, hook.Entries[0].Level)
	assert.Equal(t, "request_created", hook.Entries[1].Data["event"])
}

func TestRecorderLimit(t *testing.T) {
	ctx := context.Background()
	rec := notify.NewRecorder(2)
	for _, id := range []string{"g1", "g2", "g3"} {
		require.NoError(t, rec.Notify(ctx, models.Event{InviteID: id, UserID: "ana"}))
	}

	events, err := rec.List(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "g3", events[0].InviteID)

	require.NoError(t, rec.Clear(ctx, "ana"))
	events, _ = rec.List(ctx, "ana")
	assert.Empty(t, events)
}
