package postgres

import (
	"context"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/aquilax/debateboard/argument"
	"github.com/aquilax/debateboard/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImplementsDatabase(t *testing.T) {
	inter := reflect.TypeOf((*database.Database)(nil)).Elem()

	if !reflect.TypeOf(New()).Implements(inter) {
		t.Errorf("Postgres does not implement the database interface")
	}
}

func TestToggleVote(t *testing.T) {
	dsn := os.Getenv("DEBATE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("DEBATE_TEST_POSTGRES_DSN not set")
	}
	db := New()
	require.NoError(t, db.Open("postgres", dsn))
	defer db.Close()
	ctx := context.Background()

	u := &argument.User{
		Name:         "pg",
		Email:        uuid.New().String() + "@example.com",
		PasswordHash: "x",
		Role:         argument.RoleUser,
		Created:      time.Now().UTC(),
	}
	require.NoError(t, db.AddUser(ctx, u))
	topic := &argument.Topic{Title: "t", Status: argument.StatusApproved, Created: time.Now().UTC()}
	require.NoError(t, db.AddTopic(ctx, topic))
	a := &argument.Argument{TopicID: topic.ID, AuthorID: u.ID, Content: "c", Type: argument.StancePro, Created: time.Now().UTC()}
	require.NoError(t, db.AddArgument(ctx, a))

	outcome, err := db.ToggleVote(ctx, u.ID, a.ID, argument.Upvote)
	require.NoError(t, err)
	assert.Equal(t, argument.Registered, outcome)
	outcome, err = db.ToggleVote(ctx, u.ID, a.ID, argument.Downvote)
	require.NoError(t, err)
	assert.Equal(t, argument.Changed, outcome)

	got, err := db.GetArgument(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, -1, got.VotesCount)
}
