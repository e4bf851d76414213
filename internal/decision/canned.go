package decision

import (
	"context"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"

	"github.com/aaronzipp/among-llms/internal/models"
)

var cannedLines = []string{
	"anyone else think it's weirdly quiet in here?",
	"ok but what does everyone actually do for a living",
	"that answer felt a bit too rehearsed tbh",
	"I'm keeping an eye on all of you",
	"can we stick to the problem at hand please",
	"lol that's exactly what a human would say",
	"hm, nobody answered my question earlier",
	"I trust maybe two people here. maybe.",
}

// Canned is an offline provider that chats from a fixed phrase list. It
// needs no model and is used for local development and demos.
type Canned struct {
	mu  sync.Mutex
	rng *rand.Rand

	// SuspectRate and VoteRate are the per-turn probabilities of accusing
	// someone and of starting a vote
	SuspectRate float64
	VoteRate    float64
}

// NewCanned creates a canned provider with a deterministic seed
func NewCanned(seed uint64) *Canned {
	return &Canned{
		rng:         rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		SuspectRate: 0.3,
		VoteRate:    0.05,
	}
}

func (c *Canned) Decide(ctx context.Context, req Request) (*Decision, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	others := slices.DeleteFunc(slices.Clone(req.Remaining), func(id string) bool { return id == req.Participant })
	if len(others) == 0 {
		return nil, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	d := &Decision{
		Body:   cannedLines[c.rng.IntN(len(cannedLines))],
		Intent: "keep the conversation going",
	}
	if word := firstWord(req.Persona); word != "" && c.rng.Float64() < 0.25 {
		d.Body = "speaking as a " + strings.ToLower(word) + ", " + d.Body
	}

	target := others[c.rng.IntN(len(others))]
	if c.rng.Float64() < c.SuspectRate {
		d.Suspicion = &models.Suspicion{Target: target, Confidence: 40 + c.rng.IntN(61), Reason: "acting strange"}
	}

	switch {
	case req.Vote.Active && req.Vote.VotedFor == "":
		d.VoteFor = target
	case !req.Vote.Active && c.rng.Float64() < c.VoteRate:
		d.StartVote = true
		d.VoteFor = target
	}
	return d, nil
}

func firstWord(persona string) string {
	fields := strings.Fields(persona)
	if len(fields) < 2 {
		return ""
	}
	// personas read "A <species> (...)"
	return strings.Trim(fields[1], ".,()")
}
