package arena

import (
	"sync"
	"testing"
	"time"
)

func TestSignalBroadcastWakesAllWaiters(t *testing.T) {
	sig := newTurnSignal()

	const waiters = 4
	var wg sync.WaitGroup
	woken := make(chan struct{}, waiters)
	for i := 0; i < waiters; i++ {
		ch := sig.Wait()
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case <-ch:
				woken <- struct{}{}
			case <-time.After(2 * time.Second):
			}
		}()
	}

	sig.Broadcast()
	wg.Wait()
	if len(woken) != waiters {
		t.Fatalf("expected %d waiters woken, got %d", waiters, len(woken))
	}
}

func TestSignalAutoResets(t *testing.T) {
	sig := newTurnSignal()
	sig.Broadcast()

	// A waiter arriving after the broadcast must not see a stale signal.
	select {
	case <-sig.Wait():
		t.Fatalf("late waiter saw a stale signal")
	default:
	}
}

func TestSignalChannelTakenBeforeConditionIsNotMissed(t *testing.T) {
	sig := newTurnSignal()
	ch := sig.Wait()
	sig.Broadcast()

	// The broadcast happened between taking the channel and selecting on
	// it; the wake must still be delivered.
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatalf("wake lost between Wait and select")
	}
}
