package argument

import (
	"time"
)

type UserID = string
type TopicID = string
type ArgumentID = string

type TopicStatus string

const (
	StatusPending  TopicStatus = "PENDING"
	StatusApproved TopicStatus = "APPROVED"
	StatusRejected TopicStatus = "REJECTED"
)

func (s TopicStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type Stance string

const (
	StancePro     Stance = "PRO"
	StanceContra  Stance = "CONTRA"
	StanceNeutral Stance = "NEUTRO"
)

func (s Stance) Valid() bool {
	switch s {
	case StancePro, StanceContra, StanceNeutral:
		return true
	}
	return false
}

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID           UserID    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	Created      time.Time `db:"created" json:"createdAt"`
}

type Topic struct {
	ID          TopicID     `db:"id" json:"id"`
	Title       string      `db:"title" json:"title"`
	Description string      `db:"description" json:"description"`
	Category    string      `db:"category" json:"category"`
	AuthorID    *UserID     `db:"author_id" json:"authorId"`
	Status      TopicStatus `db:"status" json:"status"`
	Created     time.Time   `db:"created" json:"createdAt"`
}

type TopicList []Topic

// Argument is a stored argument row. AuthorName is filled by the storage
// layer from the author's user record.
type Argument struct {
	ID           ArgumentID  `db:"id"`
	TopicID      TopicID     `db:"topic_id"`
	ParentID     *ArgumentID `db:"parent_id"`
	AuthorID     UserID      `db:"author_id"`
	AuthorName   string      `db:"author_name"`
	Content      string      `db:"content"`
	Type         Stance      `db:"type"`
	ReferenceURL *string     `db:"reference_url"`
	VotesCount   int         `db:"votes_count"`
	Created      time.Time   `db:"created"`
}

type ArgumentList []Argument

func (a *Argument) IsRoot() bool {
	return a.ParentID == nil
}

// Stats are the per-user counters gamification points are derived from.
type Stats struct {
	Arguments      int `db:"arguments"`
	ApprovedTopics int `db:"approved_topics"`
	Upvotes        int `db:"upvotes"`
	Downvotes      int `db:"downvotes"`
}

func (s Stats) Points() int {
	p := 10*s.Arguments + 5*s.ApprovedTopics + 2*s.Upvotes - s.Downvotes
	if p < 0 {
		return 0
	}
	return p
}
