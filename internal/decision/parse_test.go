package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronzipp/among-llms/internal/models"
)

func TestParseFullReply(t *testing.T) {
	reply := `Sure, here you go:
MESSAGE: "who fixed the reactor last time?"
INTENT: test Pixel's background
SEND_TO: None
SUSPECT_ID: Pixel
SUSPECT_CONFIDENCE: 75
REASON_FOR_SUSPECT: dodged a question
START_A_VOTE: True
VOTING_FOR: Pixel
MESSAGE: ignored duplicate
`
	d, err := Parse(reply)
	require.NoError(t, err)
	assert.Equal(t, &Decision{
		Body:      "who fixed the reactor last time?",
		Intent:    "test Pixel's background",
		Suspicion: &models.Suspicion{Target: "Pixel", Confidence: 75, Reason: "dodged a question"},
		StartVote: true,
		VoteFor:   "Pixel",
	}, d)
}

func TestParseMinimalReply(t *testing.T) {
	d, err := Parse("MESSAGE: hi: all\nSEND_TO: Nova\nSUSPECT_ID: none\nSTART_A_VOTE: false")
	require.NoError(t, err)
	assert.Equal(t, "hi: all", d.Body)
	assert.Equal(t, "Nova", d.Recipient)
	assert.Nil(t, d.Suspicion)
	assert.False(t, d.StartVote)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("INTENT: nothing to say")
	assert.ErrorContains(t, err, "missing MESSAGE")

	_, err = Parse("MESSAGE: x\nSTART_A_VOTE: maybe")
	assert.ErrorContains(t, err, "START_A_VOTE")

	_, err = Parse("MESSAGE: x\nSUSPECT_ID: Nova\nSUSPECT_CONFIDENCE: very")
	assert.ErrorContains(t, err, "SUSPECT_CONFIDENCE")
}

func TestValidate(t *testing.T) {
	allowed := []string{"Nova", "Pixel", "Rook"}
	cases := []struct {
		name string
		d    Decision
		err  error
	}{
		{"ok", Decision{Body: "hi", Recipient: "Pixel", VoteFor: "Rook", StartVote: true}, nil},
		{"empty", Decision{}, ErrEmptyMessage},
		{"self dm", Decision{Body: "hi", Recipient: "Nova"}, ErrSelfMessage},
		{"unknown recipient", Decision{Body: "hi", Recipient: "Ghost"}, ErrUnknownRecipient},
		{"unknown suspect", Decision{Body: "hi", Suspicion: &models.Suspicion{Target: "Ghost"}}, ErrUnknownSuspect},
		{"confidence", Decision{Body: "hi", Suspicion: &models.Suspicion{Target: "Rook", Confidence: 101}}, ErrConfidence},
		{"vote without target", Decision{Body: "hi", StartVote: true}, ErrVoteWithoutTarget},
		{"unknown target", Decision{Body: "hi", VoteFor: "Ghost"}, ErrUnknownTarget},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.d.Validate("Nova", allowed)
			if tc.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.err)
		})
	}
}
