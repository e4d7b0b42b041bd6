package viz

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/openclaw/forge/internal/logging"
	"github.com/openclaw/forge/internal/progress"
)

// Watcher feeds "artifact created" lines into the progress log as phase
// deliverables land on disk, so dashboard clients see files appear without
// the pipeline reporting each one.
type Watcher struct {
	record  *progress.Record
	logger  *logging.Logger
	watcher *fsnotify.Watcher
}

// WatchWorkspace watches root and its immediate subdirectories until ctx
// is cancelled.
func WatchWorkspace(ctx context.Context, root string, record *progress.Record, logger *logging.Logger) (*Watcher, error) {
	if logger == nil {
		logger = logging.New().WithComponent("viz")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := fw.Add(root); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", root, err)
	}
	entries, err := os.ReadDir(root)
	if err == nil {
		for _, e := range entries {
			if e.IsDir() {
				// Subdirectory watch failures are not fatal; the root
				// watch still covers top-level deliverables.
				_ = fw.Add(filepath.Join(root, e.Name()))
			}
		}
	}

	w := &Watcher{record: record, logger: logger, watcher: fw}
	go w.loop(ctx, root)
	return w, nil
}

func (w *Watcher) loop(ctx context.Context, root string) {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op.Has(fsnotify.Create) {
				rel, err := filepath.Rel(root, event.Name)
				if err != nil {
					rel = event.Name
				}
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.watcher.Add(event.Name)
					continue
				}
				w.record.AppendLog(fmt.Sprintf("artifact created: %s", rel))
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Debug("watch error", map[string]interface{}{"error": err.Error()})
		}
	}
}
