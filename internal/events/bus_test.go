package events

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeIsTyped(t *testing.T) {
	bus := NewBus(nil)

	var got []NewMessage
	Subscribe(bus, func(e NewMessage) { got = append(got, e) })
	var ended []GameEnded
	Subscribe(bus, func(e GameEnded) { ended = append(ended, e) })

	bus.Publish(NewMessage{MessageID: "1", Sender: "a"})
	bus.Publish(VoteStarted{Initiator: "a"})
	bus.Publish(GameEnded{Won: true})

	assert.Equal(t, []NewMessage{{MessageID: "1", Sender: "a"}}, got)
	assert.Equal(t, []GameEnded{{Won: true}}, ended)
}

func TestSubscribeAllSeesEveryKindInOrder(t *testing.T) {
	bus := NewBus(nil)
	var kinds []Kind
	bus.SubscribeAll(func(e Event) { kinds = append(kinds, e.Kind()) })

	bus.Publish(VoteStarted{})
	bus.Publish(BallotCast{})
	bus.Publish(VoteEnded{})
	bus.Publish(AgentsListChanged{})

	assert.Equal(t, []Kind{KindVoteStarted, KindBallotCast, KindVoteEnded, KindAgentsListChanged}, kinds)
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus(nil)
	var typed, all int
	stopTyped := Subscribe(bus, func(TurnMissed) { typed++ })
	stopAll := bus.SubscribeAll(func(Event) { all++ })
	assert.Equal(t, 2, bus.Subscribers(KindTurnMissed))

	bus.Publish(TurnMissed{})
	stopTyped()
	stopAll()
	stopTyped()
	bus.Publish(TurnMissed{})

	assert.Equal(t, 1, typed)
	assert.Equal(t, 1, all)
	assert.Zero(t, bus.Subscribers(KindTurnMissed))
}

func TestHandlerMaySubscribeDuringPublish(t *testing.T) {
	bus := NewBus(nil)
	var inner int
	Subscribe(bus, func(NewMessage) {
		Subscribe(bus, func(NewMessage) { inner++ })
	})

	bus.Publish(NewMessage{})
	assert.Zero(t, inner, "a handler added during delivery waits for the next event")
	bus.Publish(NewMessage{})
	assert.Equal(t, 1, inner)
}

func TestPanickingHandlerDoesNotStopDelivery(t *testing.T) {
	bus := NewBus(nil)
	Subscribe(bus, func(GameEnded) { panic("boom") })
	var delivered bool
	Subscribe(bus, func(GameEnded) { delivered = true })

	require.NotPanics(t, func() { bus.Publish(GameEnded{}) })
	assert.True(t, delivered)
}

func TestConcurrentPublish(t *testing.T) {
	bus := NewBus(nil)
	var count atomic.Int64
	Subscribe(bus, func(BallotCast) { count.Add(1) })

	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() { bus.Publish(BallotCast{}) })
	}
	wg.Wait()
	assert.EqualValues(t, 50, count.Load())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "vote-ended", KindVoteEnded.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
