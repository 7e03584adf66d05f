package notify

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polkiloo/topupshop/internal/domain/model"
)

func newTestHub(size int) *Hub {
	return NewHubWithBuffer(size, slog.New(slog.NewJSONHandler(io.Discard, nil)))
}

func TestHubDeliversToOwnerOnly(t *testing.T) {
	hub := newTestHub(4)
	mine, cancelMine := hub.Subscribe(1)
	defer cancelMine()
	other, cancelOther := hub.Subscribe(2)
	defer cancelOther()

	hub.Publish(model.OrderEvent{OrderID: "o1", UserID: 1, To: model.OrderStatusCompleted})

	event := <-mine
	require.Equal(t, "o1", event.OrderID)
	require.Equal(t, model.OrderStatusCompleted, event.To)
	require.Len(t, other, 0)
}

func TestHubFansOutToEverySubscription(t *testing.T) {
	hub := newTestHub(1)
	first, cancelFirst := hub.Subscribe(7)
	defer cancelFirst()
	second, cancelSecond := hub.Subscribe(7)
	defer cancelSecond()
	require.Equal(t, 2, hub.Subscribers(7))

	hub.Publish(model.OrderEvent{OrderID: "o1", UserID: 7})
	require.Equal(t, "o1", (<-first).OrderID)
	require.Equal(t, "o1", (<-second).OrderID)
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := newTestHub(1)
	ch, cancel := hub.Subscribe(1)
	defer cancel()

	hub.Publish(model.OrderEvent{OrderID: "o1", UserID: 1})
	hub.Publish(model.OrderEvent{OrderID: "o2", UserID: 1})

	require.Equal(t, int64(1), hub.Dropped())
	require.Equal(t, "o1", (<-ch).OrderID)
}

func TestHubCancelClosesChannel(t *testing.T) {
	hub := newTestHub(1)
	ch, cancel := hub.Subscribe(3)
	cancel()
	cancel()

	_, open := <-ch
	require.False(t, open)
	require.Zero(t, hub.Subscribers(3))

	require.NotPanics(t, func() { hub.Publish(model.OrderEvent{UserID: 3}) })
}

func TestHubConcurrentPublishAndCancel(t *testing.T) {
	hub := newTestHub(2)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		ch, cancel := hub.Subscribe(1)
		go func() {
			defer wg.Done()
			for range ch {
			}
		}()
		go func() {
			defer wg.Done()
			hub.Publish(model.OrderEvent{UserID: 1})
			cancel()
		}()
	}
	wg.Wait()
	require.Zero(t, hub.Subscribers(1))
}
