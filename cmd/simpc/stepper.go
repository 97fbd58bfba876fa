package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/graeme-hill/simpc-go/lib"
)

const stepperHelp = "n: run line  a: run all  r: reset  b: toggle bits  q: quit"

// stepper is the terminal version of the run line / run all / reset
// controls: the program on the left, memory on the right.
type stepper struct {
	screen tcell.Screen
	runner *lib.Runner
	opts   lib.RenderOptions
	status string
}

func stepCommand(args []string) {
	fs := flag.NewFlagSet("step", flag.ExitOnError)
	config := configFlags(fs)
	bits := fs.Bool("bits", false, "start in raw bits mode")
	path := parseWithFile(fs, args)

	program, err := lib.ReadProgramFile(path)
	if err != nil {
		log.Fatal(err)
	}
	mem, err := lib.NewMemory(config())
	if err != nil {
		log.Fatal(err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatal(err)
	}
	if err := screen.Init(); err != nil {
		log.Fatal(err)
	}
	defer screen.Fini()

	s := &stepper{
		screen: screen,
		runner: lib.NewRunner(mem, program.Source),
		opts:   lib.RenderOptions{RawBits: *bits},
		status: stepperHelp,
	}
	s.loop()
}

func (s *stepper) loop() {
	for {
		s.draw()
		switch ev := s.screen.PollEvent().(type) {
		case *tcell.EventResize:
			s.screen.Sync()
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
				return
			}
			switch ev.Rune() {
			case 'q':
				return
			case 'n':
				s.step()
			case 'a':
				s.runAll()
			case 'r':
				s.runner.Reset()
				s.status = stepperHelp
			case 'b':
				s.opts.RawBits = !s.opts.RawBits
			}
		}
	}
}

func (s *stepper) step() {
	more, err := s.runner.Step()
	switch {
	case err != nil:
		s.status = err.Error()
	case !more:
		s.status = "done, r to reset"
	default:
		s.status = stepperHelp
	}
}

func (s *stepper) runAll() {
	if err := s.runner.RunAll(); err != nil {
		s.status = err.Error()
		return
	}
	s.status = "done, r to reset"
}

func (s *stepper) draw() {
	s.screen.Clear()
	plain := tcell.StyleDefault
	active := plain.Reverse(true)
	failed := plain.Foreground(tcell.ColorRed)

	width := 0
	for i, line := range s.runner.Lines() {
		text := fmt.Sprintf("%3d  %s", i+1, line)
		style := plain
		if i+1 == s.runner.ActiveLine() {
			style = active
			if s.runner.Err() != nil {
				style = failed.Reverse(true)
			}
		}
		drawText(s.screen, 0, i, style, text)
		width = maxWidth(width, len(text))
	}

	var buf bytes.Buffer
	if err := lib.RenderTable(&buf, s.runner.Memory(), s.opts); err != nil {
		s.status = err.Error()
	}
	left := width + 4
	for i, line := range strings.Split(buf.String(), "\n") {
		drawText(s.screen, left, i, plain, line)
	}

	_, height := s.screen.Size()
	style := plain
	if s.runner.Err() != nil {
		style = failed
	}
	drawText(s.screen, 0, height-1, style, s.status)
	s.screen.Show()
}

func drawText(screen tcell.Screen, x int, y int, style tcell.Style, text string) {
	for _, r := range text {
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func maxWidth(a int, b int) int {
	if a > b {
		return a
	}
	return b
}
