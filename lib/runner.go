package lib

import (
	"fmt"
	"strings"
)

// Runner steps through a program one statement at a time. Blank and
// comment-only lines are skipped without counting as a step. The first
// failure halts the runner until Reset.
type Runner struct {
	mem    *Memory
	lines  []string
	active int
	err    error
}

func NewRunner(mem *Memory, source string) *Runner {
	r := &Runner{mem: mem}
	r.SetSource(source)
	return r
}

// SetSource replaces the program and resets execution, as editing the
// program does.
func (r *Runner) SetSource(source string) {
	r.lines = strings.Split(source, "\n")
	r.Reset()
}

// Reset clears memory and rewinds to before the first line.
func (r *Runner) Reset() {
	r.active = -1
	r.err = nil
	r.mem.Clear()
}

// ActiveLine is the 1-based line that ran last, or 0 before the first step.
func (r *Runner) ActiveLine() int {
	return r.active + 1
}

func (r *Runner) Lines() []string {
	return r.lines
}

func (r *Runner) Memory() *Memory {
	return r.mem
}

// Err is the failure that halted the runner, if any.
func (r *Runner) Err() error {
	return r.err
}

// Done reports whether no statement is left to run.
func (r *Runner) Done() bool {
	if r.err != nil {
		return true
	}
	for i := r.active + 1; i < len(r.lines); i++ {
		if !isBlankLine(r.lines[i]) {
			return false
		}
	}
	return true
}

// Step runs the next statement. It returns true while more statements may
// follow.
func (r *Runner) Step() (bool, error) {
	if r.err != nil {
		return false, fmt.Errorf("%w: %w", ErrHalted, r.err)
	}

	for r.active+1 < len(r.lines) {
		r.active++
		line := r.lines[r.active]
		result, err := Exec(line, r.mem)
		if err != nil {
			r.err = withLine(err, r.active+1, strings.TrimSpace(line))
			return false, r.err
		}
		if result == ResultOK {
			return !r.Done(), nil
		}
	}
	return false, nil
}

// RunAll steps until the program ends or a statement fails.
func (r *Runner) RunAll() error {
	for {
		more, err := r.Step()
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

func isBlankLine(line string) bool {
	stmt, err := Parse(strings.TrimSpace(line))
	if err != nil {
		return false
	}
	_, empty := stmt.(EmptyStatement)
	return empty
}
