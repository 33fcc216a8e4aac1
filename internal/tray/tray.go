// Package tray provides the macOS menu bar interface: recognition on/off,
// the word spelled so far and a clear command.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/signspell/internal/app"
)

// Tray represents the menu bar application.
type Tray struct {
	onToggle func(active bool) error
	onClear  func()
	onOpen   func()
	onQuit   func()
	active   bool
	mu       sync.RWMutex

	menuToggle *systray.MenuItem
	menuWord   *systray.MenuItem
	menuHold   *systray.MenuItem
}

// New creates a Tray showing the given recognition state.
func New(active bool) *Tray {
	return &Tray{active: active}
}

// OnToggle sets the callback run when recognition is switched on or off. A
// returned error leaves the state unchanged.
func (t *Tray) OnToggle(fn func(active bool) error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnClear sets the callback run when the clear item is clicked.
func (t *Tray) OnClear(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onClear = fn
}

// OnOpen sets the callback run when the open UI item is clicked.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback run before the tray exits.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the tray and blocks until Quit. It must be called from the
// main goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit stops the tray from any goroutine.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Signspell")
	systray.SetTooltip("Signspell fingerspelling recognition")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.active), "Toggle recognition")
	systray.AddSeparator()
	t.menuWord = systray.AddMenuItem(wordTitle(""), "Word spelled so far")
	t.menuWord.Disable()
	t.menuHold = systray.AddMenuItem(holdTitle(app.Update{}), "Current hold")
	t.menuHold.Disable()
	t.mu.Unlock()

	menuClear := systray.AddMenuItem("Clear Word", "Empty the word")
	systray.AddSeparator()
	menuOpen := systray.AddMenuItem("Open Signspell...", "Open the web UI in a browser")
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit Signspell")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuClear.ClickedCh:
				t.call(t.onClear)
			case <-menuOpen.ClickedCh:
				t.call(t.onOpen)
			case <-menuQuit.ClickedCh:
				t.call(t.onQuit)
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) handleToggle() {
	t.mu.RLock()
	next := !t.active
	callback := t.onToggle
	t.mu.RUnlock()

	if callback != nil {
		if err := callback(next); err != nil {
			return
		}
	}
	t.SetActive(next)
}

func (t *Tray) call(fn func()) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if fn != nil {
		go fn()
	}
}

// SetActive updates the toggle item.
func (t *Tray) SetActive(active bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = active
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(active))
	}
}

// IsActive returns the state shown by the toggle item.
func (t *Tray) IsActive() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active
}

// Update refreshes the menu from an app update. It is meant to be passed to
// App.Subscribe so changes made elsewhere show up in the menu.
func (t *Tray) Update(u app.Update) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active != u.Active {
		t.active = u.Active
		if t.menuToggle != nil {
			t.menuToggle.SetTitle(toggleTitle(u.Active))
		}
	}
	if t.menuWord != nil {
		t.menuWord.SetTitle(wordTitle(u.Word))
	}
	if t.menuHold != nil {
		t.menuHold.SetTitle(holdTitle(u))
	}
}

func toggleTitle(active bool) string {
	if active {
		return "● Recognizing"
	}
	return "○ Paused"
}

func wordTitle(word string) string {
	if word == "" {
		return "Word: (empty)"
	}
	return "Word: " + word
}

func holdTitle(u app.Update) string {
	if u.Hold.Idle() {
		return "Holding: none"
	}
	return fmt.Sprintf("Holding: %s %d%%", u.Hold.Candidate, int(u.Progress*100))
}
