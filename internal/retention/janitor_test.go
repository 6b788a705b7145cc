package retention

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakePruner struct {
	mu      sync.Mutex
	cutoffs []time.Time
}

func (f *fakePruner) PruneConversations(_ context.Context, before time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, before)
	return 1, nil
}

func (f *fakePruner) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cutoffs)
}

func TestCycleUsesRetentionWindow(t *testing.T) {
	pruner := &fakePruner{}
	j := New(pruner, 24*time.Hour)

	j.cycle(context.Background())

	if pruner.calls() != 1 {
		t.Fatalf("cycle calls = %d, want 1", pruner.calls())
	}
	want := time.Now().UTC().Add(-24 * time.Hour)
	got := pruner.cutoffs[0]
	if diff := got.Sub(want); diff < -time.Minute || diff > time.Minute {
		t.Errorf("cutoff = %v, want about %v", got, want)
	}
}

func TestRunPrunesImmediatelyAndStopsOnCancel(t *testing.T) {
	pruner := &fakePruner{}
	j := New(pruner, time.Hour).WithInterval(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		j.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for pruner.calls() == 0 {
		select {
		case <-deadline:
			t.Fatal("no cycle ran before deadline")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
