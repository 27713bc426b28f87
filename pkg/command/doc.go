// Package command implements reversible mutations and a bounded undo/redo
// history.
//
// A [Command] performs a forward mutation in Execute and must be able to
// return the system to the state it was in immediately before Execute when
// Undo is called. Redo reproduces exactly what Execute did; most commands
// implement it by calling Execute again.
//
// [Stack] holds executed commands with a fixed capacity (default
// [DefaultCapacity]). Adding to a full stack evicts the oldest command, and
// adding after an undo discards the redo branch:
//
//	s := command.NewStack(2)
//	s.Execute(a)
//	s.Execute(b)
//	s.Execute(c) // a is evicted
//	s.Undo()     // undoes c
//	s.Undo()     // undoes b
//	s.Undo()     // ErrNothingToUndo
//
// [Composite] groups commands so that a multi-step operation (for example a
// paste that creates several shapes and connections) is undone atomically.
package command
