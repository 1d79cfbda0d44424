package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compaward_backend/internals/constants"
	"compaward_backend/internals/features/notifications/notifications/model"
	helper "compaward_backend/internals/helpers"
	"compaward_backend/internals/helpers/apperror"
	"compaward_backend/internals/testutil"
)

type recordingPublisher struct {
	mu   sync.Mutex
	got  []string
	done chan struct{}
}

func (p *recordingPublisher) Publish(_ context.Context, n model.NotificationModel) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, ChannelFor(n))
	if len(p.got) == 2 {
		close(p.done)
	}
	return nil
}

func TestFanOutWritesInboxAndPublishes(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, db, "S1", constants.RoleStudent)
	b := testutil.CreateUser(t, db, "S2", constants.RoleStudent)
	pub := &recordingPublisher{done: make(chan struct{})}

	n := NewFanOutNotifier(db, pub, nil)
	target := uuid.New()
	n.Notify(ctx, Message{
		Recipients:  []uuid.UUID{a.ID, b.ID, a.ID},
		Verb:        "team approved",
		Target:      &Target{Type: "team", ID: target},
		Description: "well done",
	})

	<-pub.done
	assert.ElementsMatch(t, []string{"notifications:" + a.ID.String(), "notifications:" + b.ID.String()}, pub.got)

	count, err := UnreadCount(ctx, db, a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	p := helper.Params{Page: 1, PerPage: 10}
	rows, total, err := List(ctx, db, b.ID, true, p)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, rows, 1)
	assert.Equal(t, "team", rows[0].TargetType)
	require.NotNil(t, rows[0].TargetID)
	assert.Equal(t, target, *rows[0].TargetID)
}

func TestInboxReadAndDelete(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, db, "S1", constants.RoleStudent)
	other := testutil.CreateUser(t, db, "S2", constants.RoleStudent)

	n := NewFanOutNotifier(db, nil, nil)
	n.Notify(ctx, Message{Recipients: []uuid.UUID{a.ID}, Verb: "one"})
	n.Notify(ctx, Message{Recipients: []uuid.UUID{a.ID}, Verb: "two"})

	rows, _, err := List(ctx, db, a.ID, false, helper.Params{Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	err = MarkRead(ctx, db, other.ID, rows[0].ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	require.NoError(t, MarkRead(ctx, db, a.ID, rows[0].ID))
	count, err := UnreadCount(ctx, db, a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	changed, err := MarkAllRead(ctx, db, a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, changed)

	require.NoError(t, Delete(ctx, db, a.ID, rows[1].ID))
	err = Delete(ctx, db, a.ID, rows[1].ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestRecipientsWithRole(t *testing.T) {
	db := testutil.NewDB(t)
	ca := testutil.CreateUser(t, db, "CA1", constants.RoleCompetitionAdmin)
	testutil.CreateUser(t, db, "S1", constants.RoleStudent)

	ids, err := RecipientsWithRole(context.Background(), db, constants.RoleCompetitionAdmin)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{ca.ID}, ids)
}
