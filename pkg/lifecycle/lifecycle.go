// Package lifecycle guards destruction of the active logs behind an
// explicit confirmation state machine.
//
//	Idle -> ConfirmClean -> ConfirmArchiveThenClean    -> Idle
//	                     -> ConfirmCleanWithoutArchive -> Idle
//
// Cancel returns to Idle from anywhere.
package lifecycle

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"tableflip.dev/lifelog/pkg/archive"
	"tableflip.dev/lifelog/pkg/entry"
)

// State of the coordinator.
type State int

const (
	Idle State = iota
	ConfirmClean
	ConfirmArchiveThenClean
	ConfirmCleanWithoutArchive
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ConfirmClean:
		return "confirm-clean"
	case ConfirmArchiveThenClean:
		return "confirm-archive-then-clean"
	case ConfirmCleanWithoutArchive:
		return "confirm-clean-without-archive"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome of RequestClean.
type Outcome int

const (
	// NothingToClean means every category is empty. The state is unchanged.
	NothingToClean Outcome = iota
	// AwaitingDecision means the coordinator moved to ConfirmClean.
	AwaitingDecision
)

func (o Outcome) String() string {
	if o == NothingToClean {
		return "nothing-to-clean"
	}
	return "awaiting-decision"
}

// DiscardPhrase must be typed back to clean without an archive. It is
// deliberately different from a plain yes.
const DiscardPhrase = "discard"

var (
	ErrInvalidTransition    = errors.New("lifecycle: invalid transition")
	ErrConfirmationMismatch = errors.New("lifecycle: confirmation phrase does not match")
)

// ActiveLogs is the part of the log repository the coordinator drives.
type ActiveLogs interface {
	All() entry.Logs
	Empty() bool
	ReplaceAll(entry.Logs) error
}

// Archiver creates snapshots.
type Archiver interface {
	Create(entry.Logs) (archive.Item, error)
}

// Coordinator is the clean/archive state machine.
type Coordinator struct {
	logs     ActiveLogs
	archives Archiver

	mu    sync.Mutex
	state State
}

func New(logs ActiveLogs, archives Archiver) *Coordinator {
	return &Coordinator{logs: logs, archives: archives}
}

// State returns the current state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// RequestClean starts a clean. It is only valid from Idle.
func (c *Coordinator) RequestClean() (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Idle {
		return NothingToClean, c.invalid("request clean")
	}
	if c.logs.Empty() {
		return NothingToClean, nil
	}
	c.state = ConfirmClean
	return AwaitingDecision, nil
}

// Cancel abandons any pending decision.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	c.state = Idle
	c.mu.Unlock()
}

// ChooseArchiveThenClean picks the archive-first path.
func (c *Coordinator) ChooseArchiveThenClean() error {
	return c.choose(ConfirmArchiveThenClean)
}

// ChooseCleanWithoutArchive picks the destructive path.
func (c *Coordinator) ChooseCleanWithoutArchive() error {
	return c.choose(ConfirmCleanWithoutArchive)
}

func (c *Coordinator) choose(next State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != ConfirmClean {
		return c.invalid("choose " + next.String())
	}
	c.state = next
	return nil
}

// ConfirmArchiveThenClean snapshots the active logs and then clears them.
// If the snapshot fails nothing is cleared and the state is kept so the
// caller may retry or cancel.
func (c *Coordinator) ConfirmArchiveThenClean() (archive.Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != ConfirmArchiveThenClean {
		return archive.Item{}, c.invalid("confirm archive then clean")
	}
	it, err := c.archives.Create(c.logs.All())
	if err != nil {
		return archive.Item{}, fmt.Errorf("lifecycle: archive: %w", err)
	}
	c.state = Idle
	if err := c.logs.ReplaceAll(entry.Logs{}); err != nil {
		return it, fmt.Errorf("lifecycle: clean after archive %s: %w", it.ID, err)
	}
	return it, nil
}

// ConfirmCleanWithoutArchive clears the active logs for good. phrase must
// equal DiscardPhrase, ignoring case and surrounding space.
func (c *Coordinator) ConfirmCleanWithoutArchive(phrase string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != ConfirmCleanWithoutArchive {
		return c.invalid("confirm clean without archive")
	}
	if !strings.EqualFold(strings.TrimSpace(phrase), DiscardPhrase) {
		return ErrConfirmationMismatch
	}
	if err := c.logs.ReplaceAll(entry.Logs{}); err != nil {
		return fmt.Errorf("lifecycle: clean: %w", err)
	}
	c.state = Idle
	return nil
}

func (c *Coordinator) invalid(action string) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, action, c.state)
}
