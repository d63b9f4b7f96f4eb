package database

import (
	"context"
	"errors"

	"github.com/aquilax/debateboard/argument"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

type Database interface {
	Open(database, dsn string) error
	Close() error

	AddUser(ctx context.Context, u *argument.User) error
	GetUser(ctx context.Context, id argument.UserID) (*argument.User, error)
	GetUserByEmail(ctx context.Context, email string) (*argument.User, error)
	GetUserStats(ctx context.Context, id argument.UserID) (argument.Stats, error)

	AddTopic(ctx context.Context, t *argument.Topic) error
	GetTopic(ctx context.Context, id argument.TopicID) (*argument.Topic, error)
	GetTopics(ctx context.Context, status argument.TopicStatus, count, offset int) (argument.TopicList, error)
	GetTotalTopics(ctx context.Context, status argument.TopicStatus) (int, error)
	SetTopicStatus(ctx context.Context, id argument.TopicID, status argument.TopicStatus) error

	AddArgument(ctx context.Context, a *argument.Argument) error
	GetArgument(ctx context.Context, id argument.ArgumentID) (*argument.Argument, error)
	// GetRootArguments returns a page of the topic's root arguments, newest first.
	GetRootArguments(ctx context.Context, topicID argument.TopicID, count, offset int) (argument.ArgumentList, error)
	GetTotalRootArguments(ctx context.Context, topicID argument.TopicID) (int, error)
	// GetReplies returns the direct replies of all given parents, oldest first.
	GetReplies(ctx context.Context, parentIDs []argument.ArgumentID) (argument.ArgumentList, error)
	// DeleteArgument removes a leaf argument and its votes. It returns
	// ErrConflict when the argument has replies.
	DeleteArgument(ctx context.Context, id argument.ArgumentID) error

	// ToggleVote applies argument.Transition and the tally delta atomically.
	ToggleVote(ctx context.Context, voterID argument.UserID, argumentID argument.ArgumentID, d argument.Direction) (argument.Outcome, error)
	GetVote(ctx context.Context, voterID argument.UserID, argumentID argument.ArgumentID) (*argument.Vote, error)
}
