package argument

import "time"

type Author struct {
	ID   UserID `json:"id"`
	Name string `json:"name"`
}

// Node is an argument with its replies, used at every level of a tree.
type Node struct {
	ID               ArgumentID  `json:"id"`
	Content          string      `json:"content"`
	Type             Stance      `json:"type"`
	ReferenceURL     *string     `json:"referenceUrl,omitempty"`
	VotesCount       int         `json:"votesCount"`
	Author           Author      `json:"author"`
	ParentArgumentID *ArgumentID `json:"parentArgumentId"`
	Created          time.Time   `json:"createdAt"`
	Replies          []*Node     `json:"replies"`
}

func NewNode(a Argument) *Node {
	return &Node{
		ID:               a.ID,
		Content:          a.Content,
		Type:             a.Type,
		ReferenceURL:     a.ReferenceURL,
		VotesCount:       a.VotesCount,
		Author:           Author{ID: a.AuthorID, Name: a.AuthorName},
		ParentArgumentID: a.ParentID,
		Created:          a.Created,
		Replies:          []*Node{},
	}
}

// Walk visits n and all of its descendants depth first.
func (n *Node) Walk(fn func(depth int, n *Node)) {
	n.walk(0, fn)
}

func (n *Node) walk(depth int, fn func(int, *Node)) {
	fn(depth, n)
	for _, r := range n.Replies {
		r.walk(depth+1, fn)
	}
}
