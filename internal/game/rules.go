package game

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/aaronzipp/among-llms/internal/vote"
)

// Outcome is the result of applying the quorum and tie policy to a tally
type Outcome struct {
	Eliminated string         `json:"eliminated,omitempty"`
	Conclusion string         `json:"conclusion"`
	Required   int            `json:"required"`
	Total      int            `json:"total"`
	Tally      map[string]int `json:"tally"`
	Abstained  []string       `json:"abstained,omitempty"`
	Tied       []string       `json:"tied,omitempty"`
}

// Rejected reports whether the vote ended without an elimination
func (o Outcome) Rejected() bool {
	return o.Eliminated == ""
}

// RequiredVotes returns ceil(quorum * remaining)
func RequiredVotes(quorum float64, remaining int) int {
	return int(math.Ceil(quorum * float64(remaining)))
}

// ResolveVote decides whether a finished vote eliminates someone. A vote with
// no ballots, fewer ballots than the quorum, or a tie at the top is rejected.
func ResolveVote(res vote.Result, remaining []string, quorum float64) Outcome {
	out := Outcome{
		Required: RequiredVotes(quorum, len(remaining)),
		Total:    res.Total(),
		Tally:    res.Tally,
	}
	if out.Tally == nil {
		out.Tally = map[string]int{}
	}

	voted := make(map[string]bool, len(res.Ballots))
	for _, b := range res.Ballots {
		voted[b.Voter] = true
	}
	for _, id := range remaining {
		if !voted[id] {
			out.Abstained = append(out.Abstained, id)
		}
	}
	abstained := abstainedSuffix(out.Abstained)

	if out.Total == 0 {
		out.Conclusion = "Vote Rejected. No votes were cast." + abstained
		return out
	}
	if out.Total < out.Required {
		out.Conclusion = fmt.Sprintf("Vote Rejected. Only %d agents have voted. Minimum required: %d.%s",
			out.Total, out.Required, abstained)
		return out
	}

	maxVotes := 0
	var mostVoted []string
	for target, count := range out.Tally {
		if count > maxVotes {
			maxVotes = count
			mostVoted = []string{target}
		} else if count == maxVotes {
			mostVoted = append(mostVoted, target)
		}
	}
	slices.SortFunc(mostVoted, CompareIDs)

	if len(mostVoted) > 1 {
		out.Tied = mostVoted
		out.Conclusion = fmt.Sprintf("Vote Rejected. %d agents (%s) received same number of votes (%d).%s",
			len(mostVoted), strings.Join(mostVoted, ", "), maxVotes, abstained)
		return out
	}

	out.Eliminated = mostVoted[0]
	out.Conclusion = fmt.Sprintf("Vote Concluded. %s received %d out of %d votes and hence, will be terminated.%s",
		out.Eliminated, maxVotes, out.Total, abstained)
	return out
}

func abstainedSuffix(ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	return " Following agents did not vote: " + strings.Join(ids, ", ")
}

// Conclude applies the win rule to an elimination. remainingBefore is the
// size of the remaining set before removed was taken out of it. Losing the
// human always ends the game; otherwise the human wins once an elimination
// leaves fewer than WinningRemaining participants.
func Conclude(removed, human string, remainingBefore int) (ended, won bool) {
	if removed == human {
		return true, false
	}
	if remainingBefore <= WinningRemaining {
		return true, true
	}
	return false, false
}

// EliminationNotice is announced to the remaining participants when an agent
// is terminated and play continues
func EliminationNotice(id string) string {
	return fmt.Sprintf("%s has been TERMINATED. %s was NOT the HUMAN ...", id, id)
}
