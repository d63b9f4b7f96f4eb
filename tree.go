package main

import (
	"context"
	"fmt"

	"github.com/aquilax/debateboard/argument"
	"golang.org/x/sync/errgroup"
)

type Tree struct {
	Data     []*argument.Node `json:"data"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	LastPage int              `json:"lastPage"`
}

// getTree returns one page of the topic's root arguments, newest first, each
// with its complete reply subtree. Only roots are paginated.
func (m *Model) getTree(ctx context.Context, topicID argument.TopicID, page, limit int) (*Tree, error) {
	if _, err := m.db.GetTopic(ctx, topicID); err != nil {
		return nil, err
	}
	total, err := m.db.GetTotalRootArguments(ctx, topicID)
	if err != nil {
		return nil, err
	}
	roots, err := m.db.GetRootArguments(ctx, topicID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	data := make([]*argument.Node, len(roots))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.treeWorkers)
	for i := range roots {
		i := i
		data[i] = argument.NewNode(roots[i])
		g.Go(func() error {
			return m.hydrate(gctx, data[i])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Tree{
		Data:     data,
		Total:    total,
		Page:     page,
		LastPage: lastPage(total, limit),
	}, nil
}

// hydrate fills in the subtree below root breadth first, one query per
// level. Nodes are indexed by id so each reply is attached to its parent
// without another lookup.
func (m *Model) hydrate(ctx context.Context, root *argument.Node) error {
	index := map[argument.ArgumentID]*argument.Node{root.ID: root}
	level := []argument.ArgumentID{root.ID}
	for len(level) > 0 {
		replies, err := m.db.GetReplies(ctx, level)
		if err != nil {
			return fmt.Errorf("replies below %s: %w", root.ID, err)
		}
		next := make([]argument.ArgumentID, 0, len(replies))
		for _, r := range replies {
			if _, seen := index[r.ID]; seen || r.ParentID == nil {
				continue
			}
			parent, found := index[*r.ParentID]
			if !found {
				continue
			}
			n := argument.NewNode(r)
			parent.Replies = append(parent.Replies, n)
			index[n.ID] = n
			next = append(next, n.ID)
		}
		level = next
	}
	return nil
}
