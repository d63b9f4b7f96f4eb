package argument

type Direction string

const (
	Upvote   Direction = "UPVOTE"
	Downvote Direction = "DOWNVOTE"
)

func (d Direction) Valid() bool {
	return d == Upvote || d == Downvote
}

type Vote struct {
	ID         string     `db:"id"`
	VoterID    UserID     `db:"voter_id"`
	ArgumentID ArgumentID `db:"argument_id"`
	Direction  Direction  `db:"direction"`
}

// Outcome is what a toggle did to the voter's vote row.
type Outcome int

const (
	Registered Outcome = iota
	Changed
	Removed
)

func (o Outcome) String() string {
	switch o {
	case Registered:
		return "registered"
	case Changed:
		return "changed"
	case Removed:
		return "removed"
	}
	return "unknown"
}

// Transition returns the direction the vote row should end up with (empty
// when the row is to be deleted), the tally delta and the outcome.
// current is empty when the voter has no vote on the argument.
//
// Repeating the current direction retracts the vote, the opposite one flips it.
func Transition(current, requested Direction) (next Direction, delta int, outcome Outcome) {
	switch current {
	case "":
		return requested, requested.weight(), Registered
	case requested:
		return "", -current.weight(), Removed
	default:
		return requested, requested.weight() - current.weight(), Changed
	}
}

func (d Direction) weight() int {
	if d == Upvote {
		return 1
	}
	return -1
}
