package progress

import (
	"fmt"
	"sync"
	"testing"
)

func TestNewRecordIdle(t *testing.T) {
	snap := NewRecord().Snapshot()
	if snap.Agent != "Idle" || snap.Task != "Waiting..." {
		t.Errorf("unexpected idle state: %+v", snap)
	}
	if len(snap.Logs) != 0 {
		t.Errorf("expected empty logs, got %d", len(snap.Logs))
	}
}

func TestUpdate(t *testing.T) {
	r := NewRecord()
	r.Update("Developer", "Using tool: write_file", "[Developer] wrote src/main.py")

	snap := r.Snapshot()
	if snap.Agent != "Developer" {
		t.Errorf("agent = %q", snap.Agent)
	}
	if snap.Task != "Using tool: write_file" {
		t.Errorf("task = %q", snap.Task)
	}
	if len(snap.Logs) != 1 || snap.Logs[0] != "[Developer] wrote src/main.py" {
		t.Errorf("logs = %v", snap.Logs)
	}
}

func TestHistoryDropsOldest(t *testing.T) {
	r := NewRecord()
	for i := 0; i < HistoryLimit+10; i++ {
		r.AppendLog(fmt.Sprintf("line %d", i))
	}
	snap := r.Snapshot()
	if len(snap.Logs) != HistoryLimit {
		t.Fatalf("expected %d lines, got %d", HistoryLimit, len(snap.Logs))
	}
	if snap.Logs[0] != "line 10" {
		t.Errorf("oldest retained line = %q, want line 10", snap.Logs[0])
	}
	if snap.Logs[len(snap.Logs)-1] != fmt.Sprintf("line %d", HistoryLimit+9) {
		t.Errorf("newest line = %q", snap.Logs[len(snap.Logs)-1])
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	r := NewRecord()
	r.AppendLog("original")
	snap := r.Snapshot()
	snap.Logs[0] = "mutated"
	if r.Snapshot().Logs[0] != "original" {
		t.Error("snapshot shares the internal slice")
	}
}

func TestConcurrentAccess(t *testing.T) {
	r := NewRecord()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Update(fmt.Sprintf("agent-%d", n), "working", "log line")
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				snap := r.Snapshot()
				if len(snap.Logs) > HistoryLimit {
					t.Errorf("history overflow: %d", len(snap.Logs))
				}
			}
		}()
	}
	wg.Wait()
}
