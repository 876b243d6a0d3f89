// Package menu implements paged, optionally selectable menus whose state lives
// only in the footer of the rendered message. Every navigation re-reads that
// footer from channel history; nothing is kept in memory between commands.
package menu

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"sync"

	"github.com/keshon/menubot/pkg/cmd"
)

var (
	// ErrMenuNotFound means no menu message was found within the scan window.
	ErrMenuNotFound = errors.New("no menu found")
	// ErrCorruptMenu means a menu message was found but its footer does not
	// decode to a registered menu.
	ErrCorruptMenu       = errors.New("corrupt menu")
	ErrPageOutOfRange    = errors.New("page out of range")
	ErrChoiceOutOfRange  = errors.New("choice out of range")
	ErrSelectionDisabled = errors.New("that menu does not allow selection")
	ErrUnknownMenu       = errors.New("unknown menu")
	ErrInvalidMenu       = errors.New("invalid menu")
	ErrNoIdentity        = errors.New("bot user is not known yet")
)

var nameRe = regexp.MustCompile(`^[a-zA-Z_]+$`)

// SelectFunc receives the chosen option.
type SelectFunc func(ctx context.Context, inv *cmd.Invocation, option string) error

type Menu struct {
	// Name is both the footer key and the command that opens the menu.
	Name    string
	Options []string
	// Selectable menus render numbered fields and accept select.
	Selectable bool
	OnSelect   SelectFunc
	Help       string
}

// Registry holds menus by name. The last registration under a name wins.
type Registry struct {
	mu    sync.RWMutex
	menus map[string]Menu
}

func NewRegistry() *Registry {
	return &Registry{menus: make(map[string]Menu)}
}

func (r *Registry) Register(m Menu) error {
	if !nameRe.MatchString(m.Name) {
		return fmt.Errorf("%w: name %q must match %s", ErrInvalidMenu, m.Name, nameRe)
	}
	if len(m.Options) == 0 {
		return fmt.Errorf("%w: %s has no options", ErrInvalidMenu, m.Name)
	}
	if m.Selectable {
		if m.OnSelect == nil {
			return fmt.Errorf("%w: selectable menu %s needs a selection handler", ErrInvalidMenu, m.Name)
		}
		if slices.Contains(m.Options, "") {
			return fmt.Errorf("%w: selectable menu %s has an empty option", ErrInvalidMenu, m.Name)
		}
	}
	m.Options = slices.Clone(m.Options)

	r.mu.Lock()
	r.menus[m.Name] = m
	r.mu.Unlock()
	return nil
}

func (r *Registry) Get(name string) (Menu, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.menus[name]
	return m, ok
}

// All returns menus sorted by name.
func (r *Registry) All() []Menu {
	r.mu.RLock()
	out := make([]Menu, 0, len(r.menus))
	for _, m := range r.menus {
		out = append(out, m)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
