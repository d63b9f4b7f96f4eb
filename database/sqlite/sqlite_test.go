package sqlite

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/aquilax/debateboard/argument"
	"github.com/aquilax/debateboard/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImplementsDatabase(t *testing.T) {
	inter := reflect.TypeOf((*database.Database)(nil)).Elem()

	if !reflect.TypeOf(New()).Implements(inter) {
		t.Errorf("SQLite does not implement the database interface")
	}
}

func openTest(t *testing.T) database.Database {
	t.Helper()
	db := New()
	require.NoError(t, db.Open("sqlite", ":memory:"))
	t.Cleanup(func() { db.Close() })
	return db
}

func addUser(t *testing.T, db database.Database, name string) *argument.User {
	t.Helper()
	u := &argument.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Role:         argument.RoleUser,
		Created:      time.Now().UTC(),
	}
	require.NoError(t, db.AddUser(context.Background(), u))
	return u
}

func addArgument(t *testing.T, db database.Database, topicID argument.TopicID, parent *argument.ArgumentID, author argument.UserID, created time.Time) *argument.Argument {
	t.Helper()
	a := &argument.Argument{
		TopicID:  topicID,
		ParentID: parent,
		AuthorID: author,
		Content:  "content",
		Type:     argument.StancePro,
		Created:  created,
	}
	require.NoError(t, db.AddArgument(context.Background(), a))
	return a
}

func TestUsers(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()
	u := addUser(t, db, "ana")

	got, err := db.GetUserByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, argument.RoleUser, got.Role)

	dup := &argument.User{Name: "other", Email: u.Email, PasswordHash: "x", Role: argument.RoleUser, Created: time.Now().UTC()}
	assert.ErrorIs(t, db.AddUser(ctx, dup), database.ErrConflict)

	_, err = db.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestTopics(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()
	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		require.NoError(t, db.AddTopic(ctx, &argument.Topic{
			Title:   fmt.Sprintf("topic %d", i),
			Status:  argument.StatusApproved,
			Created: now.Add(time.Duration(i) * time.Second),
		}))
	}
	pending := &argument.Topic{Title: "pending", Status: argument.StatusPending, Created: now}
	require.NoError(t, db.AddTopic(ctx, pending))

	total, err := db.GetTotalTopics(ctx, argument.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	tl, err := db.GetTopics(ctx, argument.StatusApproved, 2, 0)
	require.NoError(t, err)
	require.Len(t, tl, 2)
	assert.Equal(t, "topic 2", tl[0].Title)

	require.NoError(t, db.SetTopicStatus(ctx, pending.ID, argument.StatusApproved))
	got, err := db.GetTopic(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, argument.StatusApproved, got.Status)
	assert.ErrorIs(t, db.SetTopicStatus(ctx, "missing", argument.StatusRejected), database.ErrNotFound)
}

func TestArgumentsAndReplies(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()
	u := addUser(t, db, "ana")
	topic := &argument.Topic{Title: "t", Status: argument.StatusApproved, Created: time.Now().UTC()}
	require.NoError(t, db.AddTopic(ctx, topic))

	now := time.Now().UTC()
	a := addArgument(t, db, topic.ID, nil, u.ID, now)
	b := addArgument(t, db, topic.ID, nil, u.ID, now.Add(time.Second))
	a1 := addArgument(t, db, topic.ID, &a.ID, u.ID, now.Add(2*time.Second))
	a2 := addArgument(t, db, topic.ID, &a.ID, u.ID, now.Add(3*time.Second))
	b1 := addArgument(t, db, topic.ID, &b.ID, u.ID, now.Add(4*time.Second))

	roots, err := db.GetRootArguments(ctx, topic.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, b.ID, roots[0].ID)
	assert.Equal(t, "ana", roots[0].AuthorName)
	assert.Nil(t, roots[0].ParentID)

	total, err := db.GetTotalRootArguments(ctx, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	replies, err := db.GetReplies(ctx, []argument.ArgumentID{a.ID, b.ID})
	require.NoError(t, err)
	require.Len(t, replies, 3)
	assert.Equal(t, []argument.ArgumentID{a1.ID, a2.ID, b1.ID}, []argument.ArgumentID{replies[0].ID, replies[1].ID, replies[2].ID})
	require.NotNil(t, replies[0].ParentID)
	assert.Equal(t, a.ID, *replies[0].ParentID)

	empty, err := db.GetReplies(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	assert.ErrorIs(t, db.DeleteArgument(ctx, a.ID), database.ErrConflict)
	require.NoError(t, db.DeleteArgument(ctx, a1.ID))
	assert.ErrorIs(t, db.DeleteArgument(ctx, a1.ID), database.ErrNotFound)
}

func TestToggleVote(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()
	author := addUser(t, db, "author")
	voter := addUser(t, db, "voter")
	topic := &argument.Topic{Title: "t", Status: argument.StatusApproved, Created: time.Now().UTC()}
	require.NoError(t, db.AddTopic(ctx, topic))
	a := addArgument(t, db, topic.ID, nil, author.ID, time.Now().UTC())

	steps := []struct {
		d       argument.Direction
		outcome argument.Outcome
		tally   int
	}{
		{argument.Upvote, argument.Registered, 1},
		{argument.Upvote, argument.Removed, 0},
		{argument.Downvote, argument.Registered, -1},
		{argument.Upvote, argument.Changed, 1},
		{argument.Downvote, argument.Changed, -1},
		{argument.Downvote, argument.Removed, 0},
	}
	for i, s := range steps {
		outcome, err := db.ToggleVote(ctx, voter.ID, a.ID, s.d)
		require.NoError(t, err, "step %d", i)
		assert.Equal(t, s.outcome, outcome, "step %d", i)
		got, err := db.GetArgument(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, s.tally, got.VotesCount, "step %d", i)
	}

	_, err := db.GetVote(ctx, voter.ID, a.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)

	_, err = db.ToggleVote(ctx, voter.ID, "missing", argument.Upvote)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestToggleVoteConcurrent(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()
	author := addUser(t, db, "author")
	topic := &argument.Topic{Title: "t", Status: argument.StatusApproved, Created: time.Now().UTC()}
	require.NoError(t, db.AddTopic(ctx, topic))
	a := addArgument(t, db, topic.ID, nil, author.ID, time.Now().UTC())

	var voters []*argument.User
	for i := 0; i < 8; i++ {
		voters = append(voters, addUser(t, db, fmt.Sprintf("voter%d", i)))
	}

	var wg sync.WaitGroup
	for i, v := range voters {
		for j := 0; j < 3; j++ {
			wg.Add(1)
			go func(id argument.UserID, d argument.Direction) {
				defer wg.Done()
				_, err := db.ToggleVote(ctx, id, a.ID, d)
				assert.NoError(t, err)
			}(v.ID, []argument.Direction{argument.Upvote, argument.Downvote}[(i+j)%2])
		}
	}
	wg.Wait()

	want := 0
	for _, v := range voters {
		vote, err := db.GetVote(ctx, v.ID, a.ID)
		if err == database.ErrNotFound {
			continue
		}
		require.NoError(t, err)
		if vote.Direction == argument.Upvote {
			want++
		} else {
			want--
		}
	}
	got, err := db.GetArgument(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, want, got.VotesCount)

	stats, err := db.GetUserStats(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Arguments)
	assert.Equal(t, want, stats.Upvotes-stats.Downvotes)
}
