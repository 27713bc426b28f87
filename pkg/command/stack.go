package command

import (
	"errors"

	"github.com/matzehuels/canvaskit/pkg/observability"
)

// DefaultCapacity is the history size used when a non-positive capacity is
// requested.
const DefaultCapacity = 20

var (
	// ErrNothingToUndo is returned by Undo on an empty history.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo is returned by Redo when no command has been undone
	// since the last Add.
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Stack is a bounded undo/redo history. It is not safe for concurrent use.
type Stack struct {
	capacity int
	done     []Command
	undone   []Command
}

// NewStack returns an empty stack holding at most capacity commands.
func NewStack(capacity int) *Stack {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Stack{capacity: capacity}
}

// Capacity returns the maximum number of undoable commands.
func (s *Stack) Capacity() int { return s.capacity }

// Len returns the number of undoable commands.
func (s *Stack) Len() int { return len(s.done) }

// CanUndo reports whether Undo would do anything.
func (s *Stack) CanUndo() bool { return len(s.done) > 0 }

// CanRedo reports whether Redo would do anything.
func (s *Stack) CanRedo() bool { return len(s.undone) > 0 }

// Add records an already executed command. The oldest command is evicted
// when the stack is full and any redo branch is discarded.
func (s *Stack) Add(cmd Command) {
	if cmd == nil {
		return
	}
	s.undone = nil
	if len(s.done) == s.capacity {
		copy(s.done, s.done[1:])
		s.done = s.done[:len(s.done)-1]
		observability.History().OnCommand("evict", len(s.done))
	}
	s.done = append(s.done, cmd)
	observability.History().OnCommand("add", len(s.done))
}

// Execute runs cmd and records it on success.
func (s *Stack) Execute(cmd Command) error {
	if err := cmd.Execute(); err != nil {
		return err
	}
	s.Add(cmd)
	return nil
}

// Undo reverts the most recent command. A failing command stays on the
// undo side of the history.
func (s *Stack) Undo() error {
	n := len(s.done)
	if n == 0 {
		return ErrNothingToUndo
	}
	cmd := s.done[n-1]
	if err := cmd.Undo(); err != nil {
		return err
	}
	s.done = s.done[:n-1]
	s.undone = append(s.undone, cmd)
	observability.History().OnCommand("undo", len(s.done))
	return nil
}

// Redo re-applies the most recently undone command.
func (s *Stack) Redo() error {
	n := len(s.undone)
	if n == 0 {
		return ErrNothingToRedo
	}
	cmd := s.undone[n-1]
	if err := cmd.Redo(); err != nil {
		return err
	}
	s.undone = s.undone[:n-1]
	s.done = append(s.done, cmd)
	observability.History().OnCommand("redo", len(s.done))
	return nil
}

// Clear drops the whole history.
func (s *Stack) Clear() {
	s.done = nil
	s.undone = nil
}

// History returns the names of the undoable commands, oldest first.
func (s *Stack) History() []string {
	names := make([]string, len(s.done))
	for i, c := range s.done {
		names[i] = Name(c)
	}
	return names
}
