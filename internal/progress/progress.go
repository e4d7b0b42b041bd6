// Package progress holds the shared run status read by external observers.
package progress

import "sync"

// HistoryLimit bounds the number of retained log lines; oldest are dropped first.
const HistoryLimit = 50

// Record is the shared, lock-protected status of a pipeline run.
// It is written by the pipeline and engine and read concurrently by
// any number of observers through Snapshot.
type Record struct {
	mu    sync.Mutex
	agent string
	task  string
	logs  []string
}

// Snapshot is an immutable copy of the current status.
type Snapshot struct {
	Agent string   `json:"agent"`
	Task  string   `json:"task"`
	Logs  []string `json:"logs"`
}

// NewRecord creates a Record in its idle state.
func NewRecord() *Record {
	return &Record{
		agent: "Idle",
		task:  "Waiting...",
	}
}

// Update sets the active agent and task, optionally appending log lines.
func (r *Record) Update(agent, task string, logLines ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agent = agent
	r.task = task
	for _, line := range logLines {
		r.appendLocked(line)
	}
}

// AppendLog appends a log line without touching the agent/task pair.
func (r *Record) AppendLog(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appendLocked(line)
}

func (r *Record) appendLocked(line string) {
	r.logs = append(r.logs, line)
	if len(r.logs) > HistoryLimit {
		r.logs = r.logs[len(r.logs)-HistoryLimit:]
	}
}

// Snapshot returns a copy of the current status. The internal slice is
// never shared with callers.
func (r *Record) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	logs := make([]string, len(r.logs))
	copy(logs, r.logs)
	return Snapshot{
		Agent: r.agent,
		Task:  r.task,
		Logs:  logs,
	}
}
