package reliable

import (
	"testing"

	"github.com/riftforge/moba-server/internal/game"
)

func testConfig() Config {
	return Config{RetryIntervalTicks: 10, MaxRetries: 3, QueueCapacity: 5}
}

func TestEnqueueIgnoresUnreliableEvents(t *testing.T) {
	q := New(testConfig())
	q.AddPlayer("p1")
	q.Enqueue(game.NewEvent(game.EventDamage, 1, "", nil), 1)
	if got := q.PendingFor("p1", 1); len(got) != 0 {
		t.Fatalf("unreliable event should not be enqueued, got %d pending", len(got))
	}
}

func TestPendingForSendsOnceThenWaitsForRetryInterval(t *testing.T) {
	q := New(testConfig())
	q.AddPlayer("p1")
	q.Enqueue(game.NewEvent(game.EventChampionKill, 1, "p1", nil), 1)

	first := q.PendingFor("p1", 1)
	if len(first) != 1 {
		t.Fatalf("expected first send, got %d", len(first))
	}

	again := q.PendingFor("p1", 5)
	if len(again) != 0 {
		t.Fatalf("expected no resend before retry interval elapses, got %d", len(again))
	}

	resend := q.PendingFor("p1", 11)
	if len(resend) != 1 {
		t.Fatalf("expected resend once retry interval elapsed, got %d", len(resend))
	}
}

func TestPendingForStopsAfterMaxRetries(t *testing.T) {
	q := New(testConfig())
	q.AddPlayer("p1")
	q.Enqueue(game.NewEvent(game.EventChampionKill, 0, "p1", nil), 0)

	tick := uint64(0)
	for i := 0; i < testConfig().MaxRetries; i++ {
		out := q.PendingFor("p1", tick)
		if len(out) != 1 {
			t.Fatalf("attempt %d: expected 1 pending, got %d", i, len(out))
		}
		tick += uint64(testConfig().RetryIntervalTicks)
	}

	if out := q.PendingFor("p1", tick); len(out) != 0 {
		t.Fatalf("expected no further sends past MaxRetries, got %d", len(out))
	}
	if failed := q.Failed("p1"); len(failed) != 1 {
		t.Fatalf("expected 1 failed event after exhausting retries, got %d", len(failed))
	}
}

func TestAckTrimsUpToLastEventID(t *testing.T) {
	q := New(testConfig())
	q.AddPlayer("p1")
	q.Enqueue(game.NewEvent(game.EventChampionKill, 0, "p1", nil), 0) // id 1
	q.Enqueue(game.NewEvent(game.EventAce, 0, "p1", nil), 0)          // id 2

	q.Ack("p1", 1)
	pq := q.players["p1"]
	if len(pq.events) != 1 {
		t.Fatalf("expected 1 event left after acking id 1, got %d", len(pq.events))
	}
	if pq.events[0].EventID != 2 {
		t.Fatalf("expected remaining event to be id 2, got %d", pq.events[0].EventID)
	}

	// A stale ack (<= current) must be a no-op.
	q.Ack("p1", 1)
	if pq.lastAckedEventID != 1 {
		t.Fatalf("stale ack should not move lastAckedEventID backward")
	}
}

func TestEnqueueShedsOldestAtCapacity(t *testing.T) {
	cfg := Config{RetryIntervalTicks: 10, MaxRetries: 0, QueueCapacity: 2}
	q := New(cfg)
	q.AddPlayer("p1")
	for i := 0; i < 3; i++ {
		q.Enqueue(game.NewEvent(game.EventChampionKill, uint64(i), "p1", nil), uint64(i))
	}
	pq := q.players["p1"]
	if len(pq.events) != 2 {
		t.Fatalf("expected capacity-bounded queue of 2, got %d", len(pq.events))
	}
	if pq.events[0].EventID != 2 {
		t.Fatalf("expected oldest event shed, first remaining id = %d", pq.events[0].EventID)
	}
}

func TestClearPlayerRemovesQueue(t *testing.T) {
	q := New(testConfig())
	q.AddPlayer("p1")
	q.ClearPlayer("p1")
	if got := q.PendingFor("p1", 0); got != nil {
		t.Fatalf("expected nil for cleared player, got %v", got)
	}
}
