package game

import "testing"

func TestSchedulerFiresWhenTriggerTimeElapses(t *testing.T) {
	s := NewScheduler()
	fired := false
	s.Schedule(ActionAttackDamage, 0.5, func(room Room) { fired = true })

	s.Tick(0.3, nil)
	if fired {
		t.Fatal("action should not fire before its delay elapses")
	}

	s.Tick(0.3, nil)
	if !fired {
		t.Fatal("action should fire once accumulated dt reaches its delay")
	}
	if s.Pending() != 0 {
		t.Fatalf("expected 0 pending after firing, got %d", s.Pending())
	}
}

func TestSchedulerActionFiredThisTickIsNotRefiredSameTick(t *testing.T) {
	s := NewScheduler()
	calls := 0
	s.Schedule(ActionRecastExpire, 0, func(room Room) {
		calls++
		s.Schedule(ActionRecastExpire, 0, func(room Room) { calls++ })
	})
	s.Tick(0, nil)
	if calls != 1 {
		t.Fatalf("expected exactly 1 call this tick, got %d", calls)
	}
	if s.Pending() != 1 {
		t.Fatalf("expected the re-scheduled action to remain pending, got %d", s.Pending())
	}
}

func TestCancelTagRemovesOnlyMatchingActions(t *testing.T) {
	s := NewScheduler()
	s.Schedule(ActionAttackDamage, 10, func(room Room) {})
	s.Schedule(ActionProjectileSpawn, 10, func(room Room) {})

	s.CancelTag(ActionAttackDamage)
	if s.Pending() != 1 {
		t.Fatalf("expected 1 action left after cancelling one tag, got %d", s.Pending())
	}
}

func TestCancelAllClearsEverything(t *testing.T) {
	s := NewScheduler()
	s.Schedule(ActionAttackDamage, 10, func(room Room) {})
	s.Schedule(ActionProjectileSpawn, 10, func(room Room) {})
	s.CancelAll()
	if s.Pending() != 0 {
		t.Fatalf("expected 0 pending after CancelAll, got %d", s.Pending())
	}
}
