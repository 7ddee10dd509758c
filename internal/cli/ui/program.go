package ui

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// Program runs a Model in the background until the run completes or the
// user quits.
type Program struct {
	p    *tea.Program
	done chan error
}

// Start launches the model writing to out. Extra options are passed to
// bubbletea, tests use them to disable the renderer and input.
func Start(m *Model, out io.Writer, opts ...tea.ProgramOption) *Program {
	opts = append([]tea.ProgramOption{tea.WithOutput(out)}, opts...)
	prog := &Program{
		p:    tea.NewProgram(m, opts...),
		done: make(chan error, 1),
	}
	go func() {
		_, err := prog.p.Run()
		prog.done <- err
	}()
	return prog
}

// Send delivers a StatusMsg or DoneMsg to the model.
func (p *Program) Send(msg any) {
	p.p.Send(msg)
}

// Wait blocks until the program exits and restores the terminal.
func (p *Program) Wait() error {
	return <-p.done
}
