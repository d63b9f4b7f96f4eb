// Package sqlstore implements database.Database on top of sqlx. The postgres
// and sqlite packages configure it with their driver specifics.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/aquilax/debateboard/argument"
	"github.com/aquilax/debateboard/database"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Dialect struct {
	// Schema is executed on Open. Statements must be idempotent.
	Schema []string
	// OrderColumn breaks ties between arguments created at the same instant.
	OrderColumn string
	// RowLock is appended to selects that read a row about to be modified.
	RowLock string
	// Setup runs once right after the connection pool is opened.
	Setup func(db *sqlx.DB) error
	// IsUniqueViolation reports whether err is a unique constraint failure.
	IsUniqueViolation func(err error) bool
}

type Store struct {
	db      *sqlx.DB
	dialect Dialect
}

func New(d Dialect) *Store {
	return &Store{dialect: d}
}

const (
	userColumns     = "id, name, email, password_hash, role, created"
	topicColumns    = "id, title, description, category, author_id, status, created"
	argumentColumns = `a.id, a.topic_id, a.parent_id, a.author_id, u.name AS author_name,
		a.content, a.type, a.reference_url, a.votes_count, a.created`
	argumentFrom = "argument a JOIN users u ON u.id = a.author_id"
)

func (s *Store) Open(database, dsn string) error {
	var err error
	s.db, err = sqlx.Open(database, dsn)
	if err != nil {
		return err
	}
	if err = s.db.Ping(); err != nil {
		return err
	}
	if s.dialect.Setup != nil {
		if err = s.dialect.Setup(s.db); err != nil {
			return err
		}
	}
	for _, stmt := range s.dialect.Schema {
		if _, err = s.db.Exec(stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	return nil
}

// SplitStatements splits a schema file on semicolons.
func SplitStatements(schema string) []string {
	var result []string
	for _, stmt := range strings.Split(schema, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			result = append(result, stmt)
		}
	}
	return result
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) q(query string) string {
	return s.db.Rebind(query)
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return database.ErrNotFound
	}
	return err
}

func (s *Store) AddUser(ctx context.Context, u *argument.User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO users (
			id,
			name,
			email,
			password_hash,
			role,
			created
		) VALUES (
			:id,
			:name,
			:email,
			:password_hash,
			:role,
			:created
		)`, u)
	if err != nil && s.dialect.IsUniqueViolation != nil && s.dialect.IsUniqueViolation(err) {
		return database.ErrConflict
	}
	return err
}

func (s *Store) GetUser(ctx context.Context, id argument.UserID) (*argument.User, error) {
	var u argument.User
	err := s.db.GetContext(ctx, &u, s.q("SELECT "+userColumns+" FROM users WHERE id = ?"), id)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*argument.User, error) {
	var u argument.User
	err := s.db.GetContext(ctx, &u, s.q("SELECT "+userColumns+" FROM users WHERE lower(email) = lower(?)"), email)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Store) GetUserStats(ctx context.Context, id argument.UserID) (argument.Stats, error) {
	var st argument.Stats
	err := s.db.GetContext(ctx, &st, s.q(`SELECT
			(SELECT count(*) FROM argument WHERE author_id = ?) AS arguments,
			(SELECT count(*) FROM topic WHERE author_id = ? AND status = 'APPROVED') AS approved_topics,
			(SELECT count(*) FROM vote v JOIN argument a ON a.id = v.argument_id
				WHERE a.author_id = ? AND v.direction = 'UPVOTE') AS upvotes,
			(SELECT count(*) FROM vote v JOIN argument a ON a.id = v.argument_id
				WHERE a.author_id = ? AND v.direction = 'DOWNVOTE') AS downvotes`),
		id, id, id, id)
	return st, err
}

func (s *Store) AddTopic(ctx context.Context, t *argument.Topic) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO topic (
			id,
			title,
			description,
			category,
			author_id,
			status,
			created
		) VALUES (
			:id,
			:title,
			:description,
			:category,
			:author_id,
			:status,
			:created
		)`, t)
	return err
}

func (s *Store) GetTopic(ctx context.Context, id argument.TopicID) (*argument.Topic, error) {
	var t argument.Topic
	err := s.db.GetContext(ctx, &t, s.q("SELECT "+topicColumns+" FROM topic WHERE id = ?"), id)
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (s *Store) GetTopics(ctx context.Context, status argument.TopicStatus, count, offset int) (argument.TopicList, error) {
	tl := argument.TopicList{}
	err := s.db.SelectContext(ctx, &tl, s.q("SELECT "+topicColumns+" FROM topic WHERE status = ? ORDER BY created DESC, id DESC LIMIT ? OFFSET ?"), status, count, offset)
	return tl, err
}

func (s *Store) GetTotalTopics(ctx context.Context, status argument.TopicStatus) (int, error) {
	var total int
	err := s.db.GetContext(ctx, &total, s.q("SELECT count(*) FROM topic WHERE status = ?"), status)
	return total, err
}

func (s *Store) SetTopicStatus(ctx context.Context, id argument.TopicID, status argument.TopicStatus) error {
	res, err := s.db.ExecContext(ctx, s.q("UPDATE topic SET status = ? WHERE id = ?"), status, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return database.ErrNotFound
	}
	return nil
}

func (s *Store) AddArgument(ctx context.Context, a *argument.Argument) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO argument (
			id,
			topic_id,
			parent_id,
			author_id,
			content,
			type,
			reference_url,
			votes_count,
			created
		) VALUES (
			:id,
			:topic_id,
			:parent_id,
			:author_id,
			:content,
			:type,
			:reference_url,
			:votes_count,
			:created
		)`, a)
	return err
}

func (s *Store) GetArgument(ctx context.Context, id argument.ArgumentID) (*argument.Argument, error) {
	var a argument.Argument
	err := s.db.GetContext(ctx, &a, s.q("SELECT "+argumentColumns+" FROM "+argumentFrom+" WHERE a.id = ?"), id)
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (s *Store) GetRootArguments(ctx context.Context, topicID argument.TopicID, count, offset int) (argument.ArgumentList, error) {
	al := argument.ArgumentList{}
	err := s.db.SelectContext(ctx, &al, s.q("SELECT "+argumentColumns+" FROM "+argumentFrom+
		" WHERE a.topic_id = ? AND a.parent_id IS NULL ORDER BY a.created DESC, a."+s.dialect.OrderColumn+" DESC LIMIT ? OFFSET ?"),
		topicID, count, offset)
	return al, err
}

func (s *Store) GetTotalRootArguments(ctx context.Context, topicID argument.TopicID) (int, error) {
	var total int
	err := s.db.GetContext(ctx, &total, s.q("SELECT count(*) FROM argument WHERE topic_id = ? AND parent_id IS NULL"), topicID)
	return total, err
}

func (s *Store) GetReplies(ctx context.Context, parentIDs []argument.ArgumentID) (argument.ArgumentList, error) {
	al := argument.ArgumentList{}
	if len(parentIDs) == 0 {
		return al, nil
	}
	query, args, err := sqlx.In("SELECT "+argumentColumns+" FROM "+argumentFrom+
		" WHERE a.parent_id IN (?) ORDER BY a.created, a."+s.dialect.OrderColumn, parentIDs)
	if err != nil {
		return nil, err
	}
	err = s.db.SelectContext(ctx, &al, s.q(query), args...)
	return al, err
}

func (s *Store) DeleteArgument(ctx context.Context, id argument.ArgumentID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, s.q("DELETE FROM vote WHERE argument_id = ?"), id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, s.q(`DELETE FROM argument WHERE id = ?
		AND NOT EXISTS (SELECT 1 FROM argument c WHERE c.parent_id = ?)`), id, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists int
		if err = tx.GetContext(ctx, &exists, s.q("SELECT 1 FROM argument WHERE id = ?"), id); err != nil {
			return notFound(err)
		}
		return database.ErrConflict
	}
	return tx.Commit()
}

// ToggleVote runs detached from ctx cancellation: once started the
// transaction either commits or rolls back on its own.
func (s *Store) ToggleVote(ctx context.Context, voterID argument.UserID, argumentID argument.ArgumentID, d argument.Direction) (argument.Outcome, error) {
	ctx = context.WithoutCancel(ctx)
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var exists int
	if err = tx.GetContext(ctx, &exists, s.q("SELECT 1 FROM argument WHERE id = ?"), argumentID); err != nil {
		return 0, notFound(err)
	}

	delta, outcome, err := s.applyVote(ctx, tx, voterID, argumentID, d)
	if err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx, s.q("UPDATE argument SET votes_count = votes_count + ? WHERE id = ?"), delta, argumentID)
	if err != nil {
		return 0, err
	}
	if err = requireRow(res); err != nil {
		return 0, err
	}
	return outcome, tx.Commit()
}

// applyVote mutates the vote row for the pair. A fresh insert that loses the
// unique index race falls through to reading the winner's row under a row
// lock; if the winner retracted in the meantime the insert is attempted again.
func (s *Store) applyVote(ctx context.Context, tx *sqlx.Tx, voterID argument.UserID, argumentID argument.ArgumentID, d argument.Direction) (int, argument.Outcome, error) {
	for attempt := 0; attempt < 3; attempt++ {
		res, err := tx.ExecContext(ctx, s.q(`INSERT INTO vote (id, voter_id, argument_id, direction)
			VALUES (?, ?, ?, ?) ON CONFLICT (voter_id, argument_id) DO NOTHING`),
			uuid.New().String(), voterID, argumentID, d)
		if err != nil {
			return 0, 0, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, 0, err
		}
		if n == 1 {
			_, delta, outcome := argument.Transition("", d)
			return delta, outcome, nil
		}

		var current argument.Direction
		err = tx.GetContext(ctx, &current, s.q("SELECT direction FROM vote WHERE voter_id = ? AND argument_id = ?"+s.dialect.RowLock), voterID, argumentID)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return 0, 0, err
		}

		next, delta, outcome := argument.Transition(current, d)
		if next == "" {
			_, err = tx.ExecContext(ctx, s.q("DELETE FROM vote WHERE voter_id = ? AND argument_id = ?"), voterID, argumentID)
		} else {
			_, err = tx.ExecContext(ctx, s.q("UPDATE vote SET direction = ? WHERE voter_id = ? AND argument_id = ?"), next, voterID, argumentID)
		}
		if err != nil {
			return 0, 0, err
		}
		return delta, outcome, nil
	}
	return 0, 0, fmt.Errorf("vote on %s by %s kept changing underneath", argumentID, voterID)
}

func (s *Store) GetVote(ctx context.Context, voterID argument.UserID, argumentID argument.ArgumentID) (*argument.Vote, error) {
	var v argument.Vote
	err := s.db.GetContext(ctx, &v, s.q("SELECT id, voter_id, argument_id, direction FROM vote WHERE voter_id = ? AND argument_id = ?"), voterID, argumentID)
	if err != nil {
		return nil, notFound(err)
	}
	return &v, nil
}
