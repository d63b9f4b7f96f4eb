package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aquilax/debateboard/argument"
	"github.com/aquilax/debateboard/database"
	"golang.org/x/crypto/bcrypt"
)

type Model struct {
	db          database.Database
	treeWorkers int
	now         func() time.Time
}

func NewModel(db database.Database, treeWorkers int) *Model {
	if treeWorkers < 1 {
		treeWorkers = 1
	}
	return &Model{
		db:          db,
		treeWorkers: treeWorkers,
		now:         time.Now,
	}
}

func (m *Model) register(ctx context.Context, name, email, password string, role argument.Role) (*argument.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &argument.User{
		Name:         strings.TrimSpace(name),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		Role:         role,
		Created:      m.now().UTC(),
	}
	if err := m.db.AddUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (m *Model) authenticate(ctx context.Context, email, password string) (*argument.User, error) {
	u, err := m.db.GetUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (m *Model) getUser(ctx context.Context, id argument.UserID) (*argument.User, error) {
	return m.db.GetUser(ctx, id)
}

func (m *Model) addTopic(ctx context.Context, authorID *argument.UserID, title, description, category string, status argument.TopicStatus) (*argument.Topic, error) {
	t := &argument.Topic{
		Title:       strings.TrimSpace(title),
		Description: description,
		Category:    strings.TrimSpace(category),
		AuthorID:    authorID,
		Status:      status,
		Created:     m.now().UTC(),
	}
	if err := m.db.AddTopic(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (m *Model) getTopic(ctx context.Context, id argument.TopicID) (*argument.Topic, error) {
	return m.db.GetTopic(ctx, id)
}

type TopicPage struct {
	Data     argument.TopicList `json:"data"`
	Total    int                `json:"total"`
	Page     int                `json:"page"`
	LastPage int                `json:"lastPage"`
}

func (m *Model) getTopics(ctx context.Context, status argument.TopicStatus, page, limit int) (*TopicPage, error) {
	total, err := m.db.GetTotalTopics(ctx, status)
	if err != nil {
		return nil, err
	}
	tl, err := m.db.GetTopics(ctx, status, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	if tl == nil {
		tl = argument.TopicList{}
	}
	return &TopicPage{Data: tl, Total: total, Page: page, LastPage: lastPage(total, limit)}, nil
}

func (m *Model) setTopicStatus(ctx context.Context, id argument.TopicID, status argument.TopicStatus) error {
	return m.db.SetTopicStatus(ctx, id, status)
}

type NewArgument struct {
	TopicID      argument.TopicID
	ParentID     *argument.ArgumentID
	Content      string
	Type         argument.Stance
	ReferenceURL *string
}

// addArgument stores an argument after checking that its topic is open and
// that a reply stays inside its parent's topic. Content must already be
// sanitized.
func (m *Model) addArgument(ctx context.Context, authorID argument.UserID, na NewArgument) (*argument.Argument, error) {
	if strings.TrimSpace(na.Content) == "" {
		return nil, ErrEmptyContent
	}
	topic, err := m.db.GetTopic(ctx, na.TopicID)
	if err != nil {
		return nil, fmt.Errorf("topic %s: %w", na.TopicID, err)
	}
	if topic.Status != argument.StatusApproved {
		return nil, ErrTopicClosed
	}
	if na.ParentID != nil {
		parent, err := m.db.GetArgument(ctx, *na.ParentID)
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrParentNotFound, *na.ParentID)
		}
		if err != nil {
			return nil, fmt.Errorf("parent %s: %w", *na.ParentID, err)
		}
		if parent.TopicID != na.TopicID {
			return nil, ErrParentMismatch
		}
	}
	a := &argument.Argument{
		TopicID:      na.TopicID,
		ParentID:     na.ParentID,
		AuthorID:     authorID,
		Content:      na.Content,
		Type:         na.Type,
		ReferenceURL: na.ReferenceURL,
		Created:      m.now().UTC(),
	}
	if err := m.db.AddArgument(ctx, a); err != nil {
		return nil, err
	}
	return m.db.GetArgument(ctx, a.ID)
}

// deleteArgument removes a leaf argument. Only its author or an admin may
// delete it; arguments with replies are kept.
func (m *Model) deleteArgument(ctx context.Context, who *Identity, id argument.ArgumentID) error {
	a, err := m.db.GetArgument(ctx, id)
	if err != nil {
		return err
	}
	if a.AuthorID != who.UserID && who.Role != argument.RoleAdmin {
		return ErrForbidden
	}
	return m.db.DeleteArgument(ctx, id)
}

func (m *Model) toggleVote(ctx context.Context, voterID argument.UserID, argumentID argument.ArgumentID, d argument.Direction) (argument.Outcome, error) {
	return m.db.ToggleVote(ctx, voterID, argumentID, d)
}

func (m *Model) getVote(ctx context.Context, voterID argument.UserID, argumentID argument.ArgumentID) (*argument.Vote, error) {
	if _, err := m.db.GetArgument(ctx, argumentID); err != nil {
		return nil, err
	}
	v, err := m.db.GetVote(ctx, voterID, argumentID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	return v, err
}

type Points struct {
	UserID    argument.UserID `json:"userId"`
	Arguments int             `json:"arguments"`
	Topics    int             `json:"topics"`
	Upvotes   int             `json:"upvotes"`
	Downvotes int             `json:"downvotes"`
	Points    int             `json:"points"`
}

func (m *Model) getPoints(ctx context.Context, userID argument.UserID) (*Points, error) {
	if _, err := m.db.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	s, err := m.db.GetUserStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Points{
		UserID:    userID,
		Arguments: s.Arguments,
		Topics:    s.ApprovedTopics,
		Upvotes:   s.Upvotes,
		Downvotes: s.Downvotes,
		Points:    s.Points(),
	}, nil
}
