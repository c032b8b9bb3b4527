package workspace

import (
	"os"
	"time"
)

// GrammarWatcher polls the grammar file of a workspace and reloads it when
// it changes.
type GrammarWatcher struct {
	workspace    *Workspace
	onReload     func()
	stopCh       chan struct{}
	pollInterval time.Duration
	modTime      time.Time
}

// NewGrammarWatcher creates a watcher that calls onReload after every
// reload. onReload may be nil.
func NewGrammarWatcher(ws *Workspace, onReload func()) *GrammarWatcher {
	return &GrammarWatcher{
		workspace:    ws,
		onReload:     onReload,
		stopCh:       make(chan struct{}),
		pollInterval: 1 * time.Second,
	}
}

func (w *GrammarWatcher) Start() {
	go w.run()
}

func (w *GrammarWatcher) Stop() {
	close(w.stopCh)
}

func (w *GrammarWatcher) run() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.scan()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.scan()
		}
	}
}

// scan reloads the grammar if its modification time moved forward. It
// reports whether it reloaded.
func (w *GrammarWatcher) scan() bool {
	info, err := os.Stat(w.workspace.GrammarPath())
	if err != nil {
		return false
	}
	if !info.ModTime().After(w.modTime) {
		return false
	}
	w.modTime = info.ModTime()
	w.workspace.LoadGrammar()
	if w.onReload != nil {
		w.onReload()
	}
	return true
}
