package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/aquilax/debateboard/argument"
	"github.com/aquilax/debateboard/database"
	"github.com/google/uuid"
)

type record struct {
	argument.Argument
	seq int64
}

type pairKey struct {
	voter    argument.UserID
	argument argument.ArgumentID
}

// Memory keeps everything in process. The structure lock guards the maps;
// vote toggles additionally hold a per (voter, argument) lock so toggles on
// different pairs do not wait on each other's read-decide-write. Pair locks
// only live while a toggle holds or waits for them.
type Memory struct {
	mu        sync.RWMutex
	users     map[argument.UserID]argument.User
	topics    map[argument.TopicID]argument.Topic
	arguments map[argument.ArgumentID]*record
	votes     map[pairKey]argument.Vote
	seq       int64

	pairsMu sync.Mutex
	pairs   map[pairKey]*pairLock
}

// pairLock is held by one toggle at a time and dropped from Memory.pairs
// once nobody holds or waits for it.
type pairLock struct {
	sync.Mutex
	refs int
}

func New() *Memory {
	return &Memory{
		users:     make(map[argument.UserID]argument.User),
		topics:    make(map[argument.TopicID]argument.Topic),
		arguments: make(map[argument.ArgumentID]*record),
		votes:     make(map[pairKey]argument.Vote),
		pairs:     make(map[pairKey]*pairLock),
	}
}

func find(rl []*record, filter func(r *record) bool) []*record {
	var result []*record
	for _, r := range rl {
		if filter(r) {
			result = append(result, r)
		}
	}
	return result
}

func page[T any](items []T, count, offset int) []T {
	if offset >= len(items) {
		return items[:0]
	}
	return items[offset:min(len(items), offset+count)]
}

func (m *Memory) Open(database, dsn string) error {
	return nil
}

func (m *Memory) Close() error {
	return nil
}

func (m *Memory) AddUser(ctx context.Context, u *argument.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return database.ErrConflict
		}
	}
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	m.users[u.ID] = *u
	return nil
}

func (m *Memory) GetUser(ctx context.Context, id argument.UserID) (*argument.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, found := m.users[id]
	if !found {
		return nil, database.ErrNotFound
	}
	return &u, nil
}

func (m *Memory) GetUserByEmail(ctx context.Context, email string) (*argument.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *Memory) GetUserStats(ctx context.Context, id argument.UserID) (argument.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var s argument.Stats
	for _, t := range m.topics {
		if t.AuthorID != nil && *t.AuthorID == id && t.Status == argument.StatusApproved {
			s.ApprovedTopics++
		}
	}
	for _, r := range m.arguments {
		if r.AuthorID == id {
			s.Arguments++
		}
	}
	for k, v := range m.votes {
		r, found := m.arguments[k.argument]
		if !found || r.AuthorID != id {
			continue
		}
		if v.Direction == argument.Upvote {
			s.Upvotes++
		} else {
			s.Downvotes++
		}
	}
	return s, nil
}

func (m *Memory) AddTopic(ctx context.Context, t *argument.Topic) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	m.topics[t.ID] = *t
	return nil
}

func (m *Memory) GetTopic(ctx context.Context, id argument.TopicID) (*argument.Topic, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, found := m.topics[id]
	if !found {
		return nil, database.ErrNotFound
	}
	return &t, nil
}

func (m *Memory) topicsWithStatus(status argument.TopicStatus) argument.TopicList {
	var tl argument.TopicList
	for _, t := range m.topics {
		if t.Status == status {
			tl = append(tl, t)
		}
	}
	sort.Slice(tl, func(i, j int) bool {
		if tl[i].Created.Equal(tl[j].Created) {
			return tl[i].ID > tl[j].ID
		}
		return tl[i].Created.After(tl[j].Created)
	})
	return tl
}

func (m *Memory) GetTopics(ctx context.Context, status argument.TopicStatus, count, offset int) (argument.TopicList, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return page(m.topicsWithStatus(status), count, offset), nil
}

func (m *Memory) GetTotalTopics(ctx context.Context, status argument.TopicStatus) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.topicsWithStatus(status)), nil
}

func (m *Memory) SetTopicStatus(ctx context.Context, id argument.TopicID, status argument.TopicStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, found := m.topics[id]
	if !found {
		return database.ErrNotFound
	}
	t.Status = status
	m.topics[id] = t
	return nil
}

func (m *Memory) AddArgument(ctx context.Context, a *argument.Argument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if u, found := m.users[a.AuthorID]; found {
		a.AuthorName = u.Name
	}
	m.seq++
	m.arguments[a.ID] = &record{Argument: *a, seq: m.seq}
	return nil
}

func (m *Memory) GetArgument(ctx context.Context, id argument.ArgumentID) (*argument.Argument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, found := m.arguments[id]
	if !found {
		return nil, database.ErrNotFound
	}
	a := r.Argument
	return &a, nil
}

func (m *Memory) all() []*record {
	rl := make([]*record, 0, len(m.arguments))
	for _, r := range m.arguments {
		rl = append(rl, r)
	}
	return rl
}

func toList(rl []*record) argument.ArgumentList {
	al := make(argument.ArgumentList, len(rl))
	for i, r := range rl {
		al[i] = r.Argument
	}
	return al
}

func (m *Memory) roots(topicID argument.TopicID) []*record {
	found := find(m.all(), func(r *record) bool {
		return r.TopicID == topicID && r.IsRoot()
	})
	sort.Slice(found, func(i, j int) bool {
		if found[i].Created.Equal(found[j].Created) {
			return found[i].seq > found[j].seq
		}
		return found[i].Created.After(found[j].Created)
	})
	return found
}

func (m *Memory) GetRootArguments(ctx context.Context, topicID argument.TopicID, count, offset int) (argument.ArgumentList, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return toList(page(m.roots(topicID), count, offset)), nil
}

func (m *Memory) GetTotalRootArguments(ctx context.Context, topicID argument.TopicID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.roots(topicID)), nil
}

func (m *Memory) GetReplies(ctx context.Context, parentIDs []argument.ArgumentID) (argument.ArgumentList, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	parents := make(map[argument.ArgumentID]bool, len(parentIDs))
	for _, id := range parentIDs {
		parents[id] = true
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	found := find(m.all(), func(r *record) bool {
		return r.ParentID != nil && parents[*r.ParentID]
	})
	sort.Slice(found, func(i, j int) bool {
		if found[i].Created.Equal(found[j].Created) {
			return found[i].seq < found[j].seq
		}
		return found[i].Created.Before(found[j].Created)
	})
	return toList(found), nil
}

func (m *Memory) DeleteArgument(ctx context.Context, id argument.ArgumentID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, found := m.arguments[id]; !found {
		return database.ErrNotFound
	}
	for _, r := range m.arguments {
		if r.ParentID != nil && *r.ParentID == id {
			return database.ErrConflict
		}
	}
	delete(m.arguments, id)
	for k := range m.votes {
		if k.argument == id {
			delete(m.votes, k)
		}
	}
	return nil
}

func (m *Memory) lockPair(k pairKey) *pairLock {
	m.pairsMu.Lock()
	l, found := m.pairs[k]
	if !found {
		l = &pairLock{}
		m.pairs[k] = l
	}
	l.refs++
	m.pairsMu.Unlock()
	l.Lock()
	return l
}

func (m *Memory) unlockPair(k pairKey, l *pairLock) {
	l.Unlock()
	m.pairsMu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(m.pairs, k)
	}
	m.pairsMu.Unlock()
}

func (m *Memory) ToggleVote(ctx context.Context, voterID argument.UserID, argumentID argument.ArgumentID, d argument.Direction) (argument.Outcome, error) {
	k := pairKey{voter: voterID, argument: argumentID}
	pl := m.lockPair(k)
	defer m.unlockPair(k, pl)

	m.mu.RLock()
	_, found := m.arguments[argumentID]
	current, voted := m.votes[k]
	m.mu.RUnlock()
	if !found {
		return 0, database.ErrNotFound
	}

	var currentDir argument.Direction
	if voted {
		currentDir = current.Direction
	}
	next, delta, outcome := argument.Transition(currentDir, d)

	m.mu.Lock()
	defer m.mu.Unlock()
	r, found := m.arguments[argumentID]
	if !found {
		return 0, database.ErrNotFound
	}
	switch {
	case next == "":
		delete(m.votes, k)
	case voted:
		current.Direction = next
		m.votes[k] = current
	default:
		m.votes[k] = argument.Vote{
			ID:         uuid.New().String(),
			VoterID:    voterID,
			ArgumentID: argumentID,
			Direction:  next,
		}
	}
	r.VotesCount += delta
	return outcome, nil
}

func (m *Memory) GetVote(ctx context.Context, voterID argument.UserID, argumentID argument.ArgumentID) (*argument.Vote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, found := m.votes[pairKey{voter: voterID, argument: argumentID}]
	if !found {
		return nil, database.ErrNotFound
	}
	return &v, nil
}
