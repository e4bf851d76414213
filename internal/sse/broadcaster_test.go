package sse

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronzipp/among-llms/internal/events"
)

func TestEventNamesMatchKinds(t *testing.T) {
	assert.Equal(t, events.KindNewMessage.String(), EventNewMessage)
	assert.Equal(t, events.KindMessageModified.String(), EventMessageModified)
	assert.Equal(t, events.KindVoteStarted.String(), EventVoteStarted)
	assert.Equal(t, events.KindBallotCast.String(), EventBallotCast)
	assert.Equal(t, events.KindVoteEnded.String(), EventVoteEnded)
	assert.Equal(t, events.KindAgentsListChanged.String(), EventAgentsListChanged)
	assert.Equal(t, events.KindTurnMissed.String(), EventTurnMissed)
	assert.Equal(t, events.KindGameEnded.String(), EventGameEnded)
}

func TestHubRelaysBusEvents(t *testing.T) {
	bus := events.NewBus(nil)
	hub := NewHub(bus, nil)
	defer hub.Close()

	client := hub.AddClient("3")
	assert.Equal(t, 1, hub.ClientCount())

	bus.Publish(events.NewMessage{MessageID: "7", Sender: "2", Recipient: "3"})

	select {
	case msg := <-client:
		assert.Equal(t, EventNewMessage, msg.Event)
		var got events.NewMessage
		require.NoError(t, json.Unmarshal([]byte(msg.Data), &got))
		assert.Equal(t, events.NewMessage{MessageID: "7", Sender: "2", Recipient: "3"}, got)
	case <-time.After(time.Second):
		t.Fatal("no message relayed")
	}

	hub.RemoveClient(client)
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHubSlowClientDoesNotBlockPublisher(t *testing.T) {
	bus := events.NewBus(nil)
	hub := NewHub(bus, nil)
	hub.timeout = time.Hour
	defer hub.Close()

	slow := hub.AddClient("slow")
	for range BufferSize {
		slow <- Message{Event: "filler"}
	}

	start := time.Now()
	bus.Publish(events.VoteStarted{Initiator: "2"})
	bus.Publish(events.GameEnded{Won: true})
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	for range BufferSize {
		<-slow
	}
	var got []string
	require.Eventually(t, func() bool {
		select {
		case msg := <-slow:
			got = append(got, msg.Event)
		default:
		}
		return len(got) == 2
	}, time.Second, time.Millisecond)
	assert.Equal(t, []string{EventVoteStarted, EventGameEnded}, got)
}

func TestHubClose(t *testing.T) {
	bus := events.NewBus(nil)
	hub := NewHub(bus, nil)
	client := hub.AddClient("1")

	hub.Close()
	hub.Close()

	select {
	case <-hub.Done():
	default:
		t.Fatal("done not closed")
	}
	assert.Equal(t, 0, bus.Subscribers(events.KindGameEnded))

	bus.Publish(events.GameEnded{})
	assert.Empty(t, client)
}

func TestWrite(t *testing.T) {
	rec := httptest.NewRecorder()
	SetHeaders(rec)
	require.NoError(t, Write(rec, Message{Event: EventGameEnded, Data: `{"won":true}`}))

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "event: game-ended\ndata: {\"won\":true}\n\n", rec.Body.String())
	assert.True(t, rec.Flushed)
}
