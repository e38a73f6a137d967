// Package screen draws monitor frames full-screen with termui and reads the
// navigation keys.
package screen

import (
	"errors"
	"image"
	"os"

	ui "github.com/gizak/termui/v3"
	"github.com/jayjanssen/myq-mon/lib/monitor"
	"github.com/mattn/go-isatty"
)

// ErrUnsupportedTerminal is returned by Check when full-screen output is not
// possible
var ErrUnsupportedTerminal = errors.New("terminal not supported")

// Check fails unless out is a terminal with a usable TERM
func Check(out *os.File) error {
	fd := out.Fd()
	return checkTerm(isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd), os.Getenv("TERM"))
}

func checkTerm(tty bool, term string) error {
	if !tty || term == "" || term == "dumb" {
		return ErrUnsupportedTerminal
	}
	return nil
}

// canvas is a borderless block drawing a list of positioned texts
type canvas struct {
	ui.Block
	texts []Text
}

func newCanvas() *canvas {
	c := &canvas{Block: *ui.NewBlock()}
	c.Border = false
	return c
}

func (c *canvas) Draw(buf *ui.Buffer) {
	c.Block.Draw(buf)
	for _, t := range c.texts {
		buf.SetString(t.S, t.Style, image.Pt(t.X, t.Y))
	}
}

// Screen is the termui render sink and key source
type Screen struct {
	canvas *canvas
	events <-chan ui.Event
	width  int
	height int
	open   bool
}

// Open switches the terminal to full-screen mode
func Open() (*Screen, error) {
	if err := ui.Init(); err != nil {
		return nil, err
	}
	s := &Screen{
		canvas: newCanvas(),
		events: ui.PollEvents(),
		open:   true,
	}
	s.width, s.height = ui.TerminalDimensions()
	return s, nil
}

// Close restores the terminal. Safe to call more than once.
func (s *Screen) Close() {
	if s == nil || !s.open {
		return
	}
	s.open = false
	ui.Close()
}

// Render replaces the screen contents with frame
func (s *Screen) Render(frame *monitor.Frame) error {
	s.canvas.texts = Layout(frame, s.width, s.height)
	s.canvas.SetRect(0, 0, s.width, s.height)
	ui.Clear()
	ui.Render(s.canvas)
	return nil
}

// PollKey returns a pending key press without blocking. Resize events are
// consumed here and apply to the next render.
func (s *Screen) PollKey() (string, bool) {
	for {
		select {
		case e := <-s.events:
			switch e.Type {
			case ui.KeyboardEvent:
				return e.ID, true
			case ui.ResizeEvent:
				payload := e.Payload.(ui.Resize)
				s.width, s.height = payload.Width, payload.Height
			}
		default:
			return "", false
		}
	}
}
