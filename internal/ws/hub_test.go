package ws

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// drain collects everything currently queued on a client.
func drain(c *Client) [][]byte {
	var out [][]byte
	for {
		select {
		case data, ok := <-c.Outbound():
			if !ok {
				return out
			}
			out = append(out, data)
		default:
			return out
		}
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	a := NewClient(nil)
	b := NewClient(nil)

	hub.Register(a)
	hub.Register(b)
	if hub.ClientCount() != 2 {
		t.Fatalf("expected 2 clients, got %d", hub.ClientCount())
	}

	hub.Unregister(a)
	if hub.ClientCount() != 1 {
		t.Fatalf("expected 1 client, got %d", hub.ClientCount())
	}
}

func TestHubOnEmptyFiresAfterLastDetach(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	fired := 0
	hub.SetOnEmpty(func() { fired++ })

	a := NewClient(nil)
	b := NewClient(nil)
	hub.Register(a)
	hub.Register(b)

	hub.Unregister(a)
	if fired != 0 {
		t.Fatalf("onEmpty fired with a client still attached")
	}
	hub.Unregister(b)
	if fired != 1 {
		t.Fatalf("expected onEmpty to fire once, fired %d times", fired)
	}
}

func TestClientCloseOnFullQueue(t *testing.T) {
	client := NewClient(nil)

	// Fill the queue, then one more: the client must be closed, not block.
	for i := 0; i < cap(client.send); i++ {
		client.Send([]byte("x"))
	}
	client.Send([]byte("overflow"))

	client.mu.Lock()
	closed := client.closed
	client.mu.Unlock()
	if !closed {
		t.Fatalf("expected client to be closed after queue overflow")
	}
}

func TestSendAfterCloseIsNoop(t *testing.T) {
	client := NewClient(nil)
	client.Close()
	client.Send([]byte("late")) // must not panic on the closed channel
}

func TestHubBroadcastProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("broadcast delivers identical bytes to every client in order", prop.ForAll(
		func(numClients int, payloads []string) bool {
			hub := NewHub()
			defer hub.Close()

			clients := make([]*Client, numClients)
			for i := range clients {
				clients[i] = NewClient(nil)
				hub.Register(clients[i])
			}

			for _, p := range payloads {
				hub.Broadcast([]byte(p))
			}

			for _, c := range clients {
				got := drain(c)
				if len(got) != len(payloads) {
					return false
				}
				for i, p := range payloads {
					if string(got[i]) != p {
						return false
					}
				}
			}
			return true
		},
		gen.IntRange(1, 8),
		gen.SliceOfN(10, gen.AnyString()),
	))

	properties.TestingRun(t)
}
