package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/yhkl-dev/lofi/domain"
)

// KeyAction represents an action that can be triggered by keybindings
type KeyAction struct {
	name    string
	handler func()
}

// KeyBindingManager manages all keybindings and dispatches events
type KeyBindingManager struct {
	bindings map[tcell.Key]KeyAction // special key -> action mapping
	runeMap  map[rune]KeyAction      // rune -> action mapping
}

// NewKeyBindingManager creates a new key binding manager
func NewKeyBindingManager() *KeyBindingManager {
	return &KeyBindingManager{
		bindings: make(map[tcell.Key]KeyAction),
		runeMap:  make(map[rune]KeyAction),
	}
}

// RegisterKeyBinding registers a single key binding
func (km *KeyBindingManager) RegisterKeyBinding(action KeyAction, keys []tcell.Key, runes []rune) {
	for _, key := range keys {
		km.bindings[key] = action
	}
	for _, r := range runes {
		km.runeMap[r] = action
	}
}

// HandleKey handles a keyboard event and returns true if it was consumed
func (km *KeyBindingManager) HandleKey(event *tcell.EventKey) bool {
	action, ok := km.lookup(event)
	if !ok {
		return false
	}
	action.handler()
	return true
}

// ActionFor returns the name of the action bound to event, if any
func (km *KeyBindingManager) ActionFor(event *tcell.EventKey) (string, bool) {
	action, ok := km.lookup(event)
	return action.name, ok
}

func (km *KeyBindingManager) lookup(event *tcell.EventKey) (KeyAction, bool) {
	if event.Key() != tcell.KeyRune {
		action, ok := km.bindings[event.Key()]
		return action, ok
	}
	action, ok := km.runeMap[event.Rune()]
	return action, ok
}

// PlayerActions are the hooks the player key map triggers
type PlayerActions struct {
	Submit      func(domain.Command) bool
	ToggleHelp  func()
	ToggleQueue func()
}

// NewPlayerKeyBindings builds the default key map. step is the volume change
// of the coarse volume keys; the arrow keys always move by one.
func NewPlayerKeyBindings(actions PlayerActions, step int) *KeyBindingManager {
	km := NewKeyBindingManager()
	submit := func(cmd domain.Command) func() {
		return func() { actions.Submit(cmd) }
	}

	km.RegisterKeyBinding(KeyAction{"skip", submit(domain.Skip())},
		nil, []rune{'s', 'n', 'l'})
	km.RegisterKeyBinding(KeyAction{"playPause", submit(domain.PlayPause())},
		nil, []rune{' ', 'p'})
	km.RegisterKeyBinding(KeyAction{"volumeUp", submit(domain.VolumeUp(step))},
		[]tcell.Key{tcell.KeyUp}, []rune{'+', '=', 'k'})
	km.RegisterKeyBinding(KeyAction{"volumeDown", submit(domain.VolumeDown(step))},
		[]tcell.Key{tcell.KeyDown}, []rune{'-', '_', 'j'})
	km.RegisterKeyBinding(KeyAction{"volumeUpFine", submit(domain.VolumeUp(1))},
		[]tcell.Key{tcell.KeyRight}, nil)
	km.RegisterKeyBinding(KeyAction{"volumeDownFine", submit(domain.VolumeDown(1))},
		[]tcell.Key{tcell.KeyLeft}, nil)
	km.RegisterKeyBinding(KeyAction{"bookmark", submit(domain.Bookmark())},
		nil, []rune{'b'})
	km.RegisterKeyBinding(KeyAction{"quit", submit(domain.Quit())},
		[]tcell.Key{tcell.KeyCtrlC, tcell.KeyEscape}, []rune{'q'})
	km.RegisterKeyBinding(KeyAction{"help", actions.ToggleHelp},
		nil, []rune{'?'})
	km.RegisterKeyBinding(KeyAction{"queue", actions.ToggleQueue},
		nil, []rune{'u'})
	return km
}
