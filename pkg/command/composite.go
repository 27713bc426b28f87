package command

import "fmt"

// Composite runs a list of commands as one unit. Execute and Redo run the
// children in order; Undo runs them in reverse. If a child fails, the
// children that already ran are rolled back before the error is returned.
type Composite struct {
	name     string
	commands []Command
}

// NewComposite returns a composite named name over cmds.
func NewComposite(name string, cmds ...Command) *Composite {
	return &Composite{name: name, commands: cmds}
}

// Name implements Namer.
func (c *Composite) Name() string { return c.name }

// Add appends a child command. It does not execute it.
func (c *Composite) Add(cmd Command) {
	if cmd != nil {
		c.commands = append(c.commands, cmd)
	}
}

// Len returns the number of children.
func (c *Composite) Len() int { return len(c.commands) }

// Commands returns the children in execution order.
func (c *Composite) Commands() []Command { return c.commands }

// Execute implements Command.
func (c *Composite) Execute() error {
	return c.forward(Command.Execute)
}

// Redo implements Command.
func (c *Composite) Redo() error {
	return c.forward(Command.Redo)
}

// Undo implements Command.
func (c *Composite) Undo() error {
	for i := len(c.commands) - 1; i >= 0; i-- {
		if err := c.commands[i].Undo(); err != nil {
			return fmt.Errorf("%s: undo %s: %w", c.name, Name(c.commands[i]), err)
		}
	}
	return nil
}

func (c *Composite) forward(run func(Command) error) error {
	for i, cmd := range c.commands {
		if err := run(cmd); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = c.commands[j].Undo()
			}
			return fmt.Errorf("%s: %s: %w", c.name, Name(cmd), err)
		}
	}
	return nil
}
