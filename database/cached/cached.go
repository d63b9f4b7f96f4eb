package cached

import (
	"context"
	"sync"

	"github.com/aquilax/debateboard/argument"
	"github.com/aquilax/debateboard/database"
)

// Cached wraps a database and memoizes topic lookups and root argument
// totals, the two reads every tree request repeats. Everything else goes
// straight to the wrapped database.
//
// Every invalidation bumps the topic's generation. A fill remembers the
// generation it started under and is dropped if a write happened meanwhile.
type Cached struct {
	database.Database

	mu     sync.RWMutex
	topics map[argument.TopicID]*argument.Topic
	totals map[argument.TopicID]int
	gens   map[argument.TopicID]uint64
}

func New(db database.Database) *Cached {
	return &Cached{
		Database: db,
		topics:   make(map[argument.TopicID]*argument.Topic),
		totals:   make(map[argument.TopicID]int),
		gens:     make(map[argument.TopicID]uint64),
	}
}

func (m *Cached) clear(topicID argument.TopicID) {
	m.mu.Lock()
	delete(m.topics, topicID)
	delete(m.totals, topicID)
	m.gens[topicID]++
	m.mu.Unlock()
}

func (m *Cached) GetTopic(ctx context.Context, id argument.TopicID) (*argument.Topic, error) {
	m.mu.RLock()
	result, found := m.topics[id]
	gen := m.gens[id]
	m.mu.RUnlock()
	if found {
		t := *result
		return &t, nil
	}
	result, err := m.Database.GetTopic(ctx, id)
	if err == nil {
		t := *result
		m.mu.Lock()
		if m.gens[id] == gen {
			m.topics[id] = &t
		}
		m.mu.Unlock()
	}
	return result, err
}

func (m *Cached) GetTotalRootArguments(ctx context.Context, topicID argument.TopicID) (int, error) {
	m.mu.RLock()
	result, found := m.totals[topicID]
	gen := m.gens[topicID]
	m.mu.RUnlock()
	if found {
		return result, nil
	}
	result, err := m.Database.GetTotalRootArguments(ctx, topicID)
	if err == nil {
		m.mu.Lock()
		if m.gens[topicID] == gen {
			m.totals[topicID] = result
		}
		m.mu.Unlock()
	}
	return result, err
}

func (m *Cached) SetTopicStatus(ctx context.Context, id argument.TopicID, status argument.TopicStatus) error {
	err := m.Database.SetTopicStatus(ctx, id, status)
	m.clear(id)
	return err
}

func (m *Cached) AddArgument(ctx context.Context, a *argument.Argument) error {
	err := m.Database.AddArgument(ctx, a)
	if err == nil {
		m.clear(a.TopicID)
	}
	return err
}

func (m *Cached) DeleteArgument(ctx context.Context, id argument.ArgumentID) error {
	a, err := m.Database.GetArgument(ctx, id)
	if err != nil {
		return err
	}
	err = m.Database.DeleteArgument(ctx, id)
	if err == nil {
		m.clear(a.TopicID)
	}
	return err
}
