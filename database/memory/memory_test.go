package memory

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/aquilax/debateboard/argument"
	"github.com/aquilax/debateboard/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImplementsDatabase(t *testing.T) {
	inter := reflect.TypeOf((*database.Database)(nil)).Elem()

	if !reflect.TypeOf(New()).Implements(inter) {
		t.Errorf("Memory does not implement the database interface")
	}
}

func seed(t *testing.T, m *Memory) (argument.TopicID, argument.ArgumentID) {
	t.Helper()
	ctx := context.Background()
	topic := &argument.Topic{Title: "t", Status: argument.StatusApproved}
	require.NoError(t, m.AddTopic(ctx, topic))
	a := &argument.Argument{TopicID: topic.ID, AuthorID: "author", Content: "c", Type: argument.StancePro}
	require.NoError(t, m.AddArgument(ctx, a))
	return topic.ID, a.ID
}

func TestToggleVoteMissingArgument(t *testing.T) {
	m := New()
	_, err := m.ToggleVote(context.Background(), "v", "missing", argument.Upvote)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestToggleVoteConcurrentVoters(t *testing.T) {
	m := New()
	ctx := context.Background()
	_, id := seed(t, m)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d := argument.Upvote
			if i%5 == 0 {
				d = argument.Downvote
			}
			_, err := m.ToggleVote(ctx, fmt.Sprintf("voter-%d", i), id, d)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Empty(t, m.pairs)

	a, err := m.GetArgument(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 40-10, a.VotesCount)
}

func TestToggleVoteSamePairSerializes(t *testing.T) {
	m := New()
	ctx := context.Background()
	_, id := seed(t, m)

	var wg sync.WaitGroup
	for i := 0; i < 101; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.ToggleVote(ctx, "voter", id, argument.Upvote)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Empty(t, m.pairs)

	a, err := m.GetArgument(ctx, id)
	require.NoError(t, err)
	v, err := m.GetVote(ctx, "voter", id)
	require.NoError(t, err)
	assert.Equal(t, argument.Upvote, v.Direction)
	assert.Equal(t, 1, a.VotesCount)
}

func TestDeleteArgumentWithReplies(t *testing.T) {
	m := New()
	ctx := context.Background()
	topicID, rootID := seed(t, m)
	reply := &argument.Argument{TopicID: topicID, ParentID: &rootID, AuthorID: "author", Type: argument.StanceContra}
	require.NoError(t, m.AddArgument(ctx, reply))
	_, err := m.ToggleVote(ctx, "voter", reply.ID, argument.Upvote)
	require.NoError(t, err)

	assert.ErrorIs(t, m.DeleteArgument(ctx, rootID), database.ErrConflict)
	require.NoError(t, m.DeleteArgument(ctx, reply.ID))
	_, err = m.GetVote(ctx, "voter", reply.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
	require.NoError(t, m.DeleteArgument(ctx, rootID))
	assert.ErrorIs(t, m.DeleteArgument(ctx, rootID), database.ErrNotFound)
}

func TestPaging(t *testing.T) {
	items := []int{1, 2, 3}
	assert.Equal(t, []int{2, 3}, page(items, 5, 1))
	assert.Empty(t, page(items, 5, 3))
	assert.Empty(t, page(items, 5, 10))
}
