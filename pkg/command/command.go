package command

import "fmt"

// Command is a reversible mutation.
type Command interface {
	// Execute performs the forward mutation.
	Execute() error
	// Undo restores the state that existed immediately before Execute.
	Undo() error
	// Redo repeats the mutation after an Undo.
	Redo() error
}

// Namer is implemented by commands that can describe themselves for logs and
// history listings.
type Namer interface {
	Name() string
}

// Name returns the command's name if it implements Namer, or its Go type.
func Name(c Command) string {
	if n, ok := c.(Namer); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", c)
}

// Func returns a Command built from a pair of closures. Redo calls do again.
func Func(name string, do, undo func() error) Command {
	return &funcCommand{name: name, do: do, undo: undo}
}

type funcCommand struct {
	name     string
	do, undo func() error
}

func (f *funcCommand) Name() string { return f.name }

func (f *funcCommand) Execute() error {
	if f.do == nil {
		return nil
	}
	return f.do()
}

func (f *funcCommand) Undo() error {
	if f.undo == nil {
		return nil
	}
	return f.undo()
}

func (f *funcCommand) Redo() error { return f.Execute() }
