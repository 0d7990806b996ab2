package web

import (
	"unicode/utf8"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"

	"github.com/web-terminal-gateway/backend/internal/ws"
)

// namedKeys maps DOM KeyboardEvent.key names to CDP keys for everything
// that is not a single printable character.
var namedKeys = map[string]input.Key{
	"Enter":      input.Enter,
	"Backspace":  input.Backspace,
	"Tab":        input.Tab,
	"Escape":     input.Escape,
	"Delete":     input.Delete,
	"ArrowUp":    input.ArrowUp,
	"ArrowDown":  input.ArrowDown,
	"ArrowLeft":  input.ArrowLeft,
	"ArrowRight": input.ArrowRight,
	"Home":       input.Home,
	"End":        input.End,
	"PageUp":     input.PageUp,
	"PageDown":   input.PageDown,
	"Shift":      input.ShiftLeft,
	"Control":    input.ControlLeft,
	"Alt":        input.AltLeft,
	"Meta":       input.MetaLeft,
	" ":          input.Space,
}

// DispatchInput forwards one normalized input event to the page. Unknown
// kinds and unmapped keys are dropped silently; real dispatch failures are
// returned so the transport can report them in-band.
func (s *Session) DispatchInput(event *ws.InputEvent) error {
	s.mu.Lock()
	page := s.page
	closed := s.closed
	s.mu.Unlock()

	if closed || page == nil || event == nil {
		return nil
	}

	err := dispatch(page, event)
	s.requestFrame("input")
	return err
}

func dispatch(page *rod.Page, event *ws.InputEvent) error {
	switch event.Kind {
	case ws.InputKindMouseMove:
		return page.Mouse.MoveTo(proto.Point{X: event.X, Y: event.Y})

	case ws.InputKindMouseDown:
		if err := page.Mouse.MoveTo(proto.Point{X: event.X, Y: event.Y}); err != nil {
			return err
		}
		return page.Mouse.Down(mouseButton(event.Button), 1)

	case ws.InputKindMouseUp:
		if err := page.Mouse.MoveTo(proto.Point{X: event.X, Y: event.Y}); err != nil {
			return err
		}
		return page.Mouse.Up(mouseButton(event.Button), 1)

	case ws.InputKindWheel:
		return page.Mouse.Scroll(event.DX, event.DY, 1)

	case ws.InputKindKey:
		key, ok := lookupKey(event.Key)
		if !ok {
			return nil
		}
		switch event.Action {
		case "up":
			return page.Keyboard.Release(key)
		case "press":
			return page.Keyboard.Type(key)
		default:
			return page.Keyboard.Press(key)
		}

	case ws.InputKindText:
		if event.Text == "" {
			return nil
		}
		return page.InsertText(event.Text)

	default:
		return nil
	}
}

// mouseButton maps DOM MouseEvent.button values: 1 is middle, 2 is right,
// everything else left.
func mouseButton(button int) proto.InputMouseButton {
	switch button {
	case 1:
		return proto.InputMouseButtonMiddle
	case 2:
		return proto.InputMouseButtonRight
	default:
		return proto.InputMouseButtonLeft
	}
}

func lookupKey(name string) (input.Key, bool) {
	if name == "" {
		return 0, false
	}
	if key, ok := namedKeys[name]; ok {
		return key, true
	}
	if utf8.RuneCountInString(name) == 1 {
		r, _ := utf8.DecodeRuneInString(name)
		return input.Key(r), true
	}
	return 0, false
}
