package decision

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aaronzipp/among-llms/internal/models"
)

// Keys of the line-oriented reply schema
const (
	KeyMessage           = "MESSAGE"
	KeyIntent            = "INTENT"
	KeySendTo            = "SEND_TO"
	KeySuspectID         = "SUSPECT_ID"
	KeySuspectConfidence = "SUSPECT_CONFIDENCE"
	KeySuspectReason     = "REASON_FOR_SUSPECT"
	KeyStartVote         = "START_A_VOTE"
	KeyVotingFor         = "VOTING_FOR"
)

var schemaKeys = map[string]bool{
	KeyMessage:           true,
	KeyIntent:            true,
	KeySendTo:            true,
	KeySuspectID:         true,
	KeySuspectConfidence: true,
	KeySuspectReason:     true,
	KeyStartVote:         true,
	KeyVotingFor:         true,
}

// Parse reads a "KEY: value" reply. Lines without a known key are ignored
// and the first occurrence of a key wins. Values are trimmed of whitespace
// and surrounding quotes; "None" means absent.
func Parse(reply string) (*Decision, error) {
	values := make(map[string]string)
	for line := range strings.Lines(reply) {
		key, value, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if !schemaKeys[key] {
			continue
		}
		if _, seen := values[key]; seen {
			continue
		}
		values[key] = cleanValue(value)
	}

	body, ok := values[KeyMessage]
	if !ok {
		return nil, fmt.Errorf("missing %s. Doesn't match the requested output schema", KeyMessage)
	}
	d := &Decision{
		Body:      noneToEmpty(body),
		Intent:    noneToEmpty(values[KeyIntent]),
		Recipient: noneToEmpty(values[KeySendTo]),
		VoteFor:   noneToEmpty(values[KeyVotingFor]),
	}

	if raw := noneToEmpty(values[KeyStartVote]); raw != "" {
		start, err := strconv.ParseBool(strings.ToLower(raw))
		if err != nil {
			return nil, fmt.Errorf("%s must be True or False, got %q", KeyStartVote, raw)
		}
		d.StartVote = start
	}

	if suspect := noneToEmpty(values[KeySuspectID]); suspect != "" {
		s := &models.Suspicion{Target: suspect, Reason: noneToEmpty(values[KeySuspectReason])}
		if raw := noneToEmpty(values[KeySuspectConfidence]); raw != "" {
			n, err := strconv.Atoi(strings.TrimSuffix(raw, "%"))
			if err != nil {
				return nil, fmt.Errorf("%s must be an integer, got %q", KeySuspectConfidence, raw)
			}
			s.Confidence = n
		}
		d.Suspicion = s
	}
	return d, nil
}

func cleanValue(v string) string {
	v = strings.TrimSpace(v)
	v = strings.Trim(v, `"`)
	return strings.TrimSpace(v)
}

func noneToEmpty(v string) string {
	if strings.EqualFold(v, "none") || strings.EqualFold(v, "null") {
		return ""
	}
	return v
}
