package argument

import "testing"

func TestTransition(t *testing.T) {
	tests := []struct {
		name      string
		current   Direction
		requested Direction
		next      Direction
		delta     int
		outcome   Outcome
	}{
		{"no vote, upvote", "", Upvote, Upvote, 1, Registered},
		{"no vote, downvote", "", Downvote, Downvote, -1, Registered},
		{"upvoted, upvote retracts", Upvote, Upvote, "", -1, Removed},
		{"upvoted, downvote flips", Upvote, Downvote, Downvote, -2, Changed},
		{"downvoted, downvote retracts", Downvote, Downvote, "", 1, Removed},
		{"downvoted, upvote flips", Downvote, Upvote, Upvote, 2, Changed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, delta, outcome := Transition(tt.current, tt.requested)
			if next != tt.next || delta != tt.delta || outcome != tt.outcome {
				t.Errorf("Transition(%q, %q) = (%q, %d, %v), want (%q, %d, %v)",
					tt.current, tt.requested, next, delta, outcome, tt.next, tt.delta, tt.outcome)
			}
		})
	}
}

func TestStatsPoints(t *testing.T) {
	tests := []struct {
		name  string
		stats Stats
		want  int
	}{
		{"empty", Stats{}, 0},
		{"mixed", Stats{Arguments: 2, ApprovedTopics: 1, Upvotes: 3, Downvotes: 1}, 30},
		{"floored at zero", Stats{Downvotes: 7}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stats.Points(); got != tt.want {
				t.Errorf("Stats.Points() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNodeWalk(t *testing.T) {
	parent := "a"
	root := NewNode(Argument{ID: "a"})
	root.Replies = append(root.Replies, NewNode(Argument{ID: "a1", ParentID: &parent}))
	var seen []string
	var depths []int
	root.Walk(func(depth int, n *Node) {
		seen = append(seen, n.ID)
		depths = append(depths, depth)
	})
	if len(seen) != 2 || seen[0] != "a" || seen[1] != "a1" || depths[1] != 1 {
		t.Errorf("Walk visited %v at depths %v", seen, depths)
	}
}
