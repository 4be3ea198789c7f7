// Package executor runs repository operations off the caller's goroutine,
// one at a time, reporting lifecycle and progress through an event channel.
package executor

import (
	"errors"
	"fmt"
	"sync/atomic"

	"mgit/internal/logging"
	"mgit/internal/repository"
)

// ErrBusy is returned by Start while a previous operation is still running.
// Operations are rejected rather than queued; the caller retries after the
// Finished event.
var ErrBusy = errors.New("a git operation is already in progress")

// Kind names an executable operation.
type Kind string

const (
	KindPull   Kind = "pull"
	KindPush   Kind = "push"
	KindFetch  Kind = "fetch"
	KindCommit Kind = "commit"
	KindSync   Kind = "sync"
	KindInit   Kind = "init"
	KindClone  Kind = "clone"
)

// Descriptor describes one operation. Kind selects which of the remaining
// fields are read; unrelated fields are ignored.
type Descriptor struct {
	Kind Kind

	// Remote defaults to "origin" for pull, push, fetch, and sync.
	Remote string
	// Branch is the branch to pull, push, or sync. Empty means the
	// current branch.
	Branch string
	// SetUpstream records tracking configuration after a push.
	SetUpstream bool

	// Message and Paths parameterize a commit.
	Message string
	Paths   []string

	// Path and InitialBranch parameterize an init.
	Path          string
	InitialBranch string

	// URL, TargetPath, CloneBranch, Depth, and Recursive parameterize
	// a clone.
	URL         string
	TargetPath  string
	CloneBranch string
	Depth       int
	Recursive   bool
}

// EventType discriminates the values on the event channel.
type EventType int

const (
	// EventStarted fires once, before the operation begins work.
	EventStarted EventType = iota
	// EventProgress fires zero or more times between Started and Finished.
	EventProgress
	// EventFinished fires exactly once per started operation.
	EventFinished
)

// Event is one lifecycle notification. Kind is always set; the remaining
// fields depend on Type.
type Event struct {
	Type EventType
	Kind Kind

	// Progress payload.
	Percent     int
	Description string

	// Finished payload. Err is a *repository.RepoError when not nil.
	OK      bool
	Message string
	Err     error
}

// Executor serializes operations against a Manager. At most one operation
// runs at a time; Start rejects concurrent submissions with ErrBusy.
// Events are delivered on a buffered channel owned by the executor.
type Executor struct {
	manager Manager
	logger  *logging.AppLogger
	events  chan Event
	running atomic.Bool
}

// NewExecutor creates an executor over the given manager.
func NewExecutor(manager Manager, logger *logging.AppLogger) *Executor {
	return &Executor{
		manager: manager,
		logger:  logger,
		events:  make(chan Event, 64),
	}
}

// Events returns the channel lifecycle notifications arrive on. The channel
// is never closed; consumers select on it for the life of the executor.
func (e *Executor) Events() <-chan Event {
	return e.events
}

// Running reports whether an operation is currently in flight.
func (e *Executor) Running() bool {
	return e.running.Load()
}

// Start launches the described operation on a new goroutine. It returns
// ErrBusy when an operation is already in flight; otherwise the caller is
// guaranteed a Started event followed by exactly one Finished event.
func (e *Executor) Start(desc Descriptor) error {
	if !e.running.CompareAndSwap(false, true) {
		return ErrBusy
	}
	go e.run(desc)
	return nil
}

func (e *Executor) run(desc Descriptor) {
	defer e.running.Store(false)
	defer func() {
		if r := recover(); r != nil {
			if e.logger != nil {
				e.logger.Error("Operation panicked", "kind", desc.Kind, "panic", r)
			}
			e.finish(desc.Kind, false, "", fmt.Errorf("internal error: %v", r))
		}
	}()

	if e.logger != nil {
		e.logger.Debug("Starting operation", "kind", desc.Kind)
	}
	e.emit(Event{Type: EventStarted, Kind: desc.Kind})

	e.manager.SetProgress(func(percent int, description string) {
		e.emit(Event{
			Type:        EventProgress,
			Kind:        desc.Kind,
			Percent:     percent,
			Description: description,
		})
	})
	defer e.manager.SetProgress(nil)

	message, err := e.execute(desc)
	e.finish(desc.Kind, err == nil, message, err)
}

func (e *Executor) execute(desc Descriptor) (string, error) {
	remote := desc.Remote
	if remote == "" {
		remote = "origin"
	}

	switch desc.Kind {
	case KindPull:
		if err := e.manager.Pull(remote, desc.Branch); err != nil {
			return "", err
		}
		return fmt.Sprintf("Pulled latest changes from %s", remote), nil

	case KindPush:
		if err := e.manager.Push(remote, desc.Branch, desc.SetUpstream); err != nil {
			return "", err
		}
		return fmt.Sprintf("Pushed to %s", remote), nil

	case KindFetch:
		if err := e.manager.Fetch(remote); err != nil {
			return "", err
		}
		return fmt.Sprintf("Fetched latest changes from %s", remote), nil

	case KindCommit:
		if err := e.manager.Commit(desc.Message, desc.Paths); err != nil {
			return "", err
		}
		return fmt.Sprintf("Committed changes: %s", desc.Message), nil

	case KindSync:
		if err := e.manager.Sync(remote, desc.Branch); err != nil {
			return "", err
		}
		return fmt.Sprintf("Synchronized with %s", remote), nil

	case KindInit:
		if err := e.manager.Init(desc.Path, desc.InitialBranch); err != nil {
			return "", err
		}
		return fmt.Sprintf("Initialized repository at %s", desc.Path), nil

	case KindClone:
		opts := repository.CloneOptions{
			Branch:    desc.CloneBranch,
			Depth:     desc.Depth,
			Recursive: desc.Recursive,
		}
		if err := e.manager.Clone(desc.URL, desc.TargetPath, opts); err != nil {
			return "", err
		}
		return fmt.Sprintf("Cloned repository into %s", desc.TargetPath), nil
	}

	return "", fmt.Errorf("unknown git operation: %s", desc.Kind)
}

func (e *Executor) finish(kind Kind, ok bool, message string, err error) {
	if err != nil {
		err = repository.Classify(err)
		if e.logger != nil {
			e.logger.Warn("Operation failed", "kind", kind, "error", err)
		}
	} else if e.logger != nil {
		e.logger.Debug("Operation finished", "kind", kind)
	}
	e.emit(Event{
		Type:    EventFinished,
		Kind:    kind,
		OK:      ok,
		Message: message,
		Err:     err,
	})
}

// emit delivers an event. Started and Finished are guaranteed delivery;
// Progress is best effort and is dropped when the consumer lags behind.
func (e *Executor) emit(ev Event) {
	if ev.Type == EventProgress {
		select {
		case e.events <- ev:
		default:
		}
		return
	}
	e.events <- ev
}
