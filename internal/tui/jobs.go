package tui

import (
	"context"
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type jobKind string

const (
	jobKindListing jobKind = "listing"
	jobKindEntry   jobKind = "entry"
	jobKindHistory jobKind = "history"
	jobKindLink    jobKind = "link"
)

// jobSnapshot describes one background job at start or completion.
type jobSnapshot struct {
	ID        string
	Kind      jobKind
	StartedAt time.Time
	Duration  time.Duration
	Err       error
}

func (s jobSnapshot) outcome() string {
	if s.Err != nil {
		return "failed"
	}
	return "succeeded"
}

type jobStartedMsg struct {
	Snapshot jobSnapshot
}

// jobDoneMsg carries the runner's own message back into Update.
type jobDoneMsg struct {
	Snapshot jobSnapshot
	Payload  tea.Msg
}

type jobRunner func(context.Context) (tea.Msg, error)

// jobBus hands out job IDs and tracks which jobs are running. It is only
// touched from Update; runners execute in tea command goroutines.
type jobBus struct {
	seq     int
	running map[string]jobKind
}

func newJobBus() *jobBus {
	return &jobBus{running: map[string]jobKind{}}
}

// Start registers a job and returns the command that runs it. The started
// message always reaches Update before the done message.
func (b *jobBus) Start(kind jobKind, runner jobRunner) tea.Cmd {
	b.seq++
	snapshot := jobSnapshot{ID: fmt.Sprintf("%s-%d", kind, b.seq), Kind: kind, StartedAt: time.Now()}
	b.running[snapshot.ID] = kind

	started := func() tea.Msg { return jobStartedMsg{Snapshot: snapshot} }
	run := func() tea.Msg {
		payload, err := runner(context.Background())
		done := snapshot
		done.Duration = time.Since(snapshot.StartedAt)
		done.Err = err
		return jobDoneMsg{Snapshot: done, Payload: payload}
	}
	return tea.Sequence(started, run)
}

// finish records a completed job and logs its outcome.
func (b *jobBus) finish(s jobSnapshot) {
	delete(b.running, s.ID)
	log.Printf("[jobs] %s %s in %s (err=%v)", s.ID, s.outcome(), s.Duration.Round(time.Millisecond), s.Err)
}

// Running counts the jobs started but not yet finished.
func (b *jobBus) Running() int {
	return len(b.running)
}
