package cmd

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps command names to commands and owns their restriction
// metadata. It is populated at startup and read on every dispatch.
type Registry struct {
	mu          sync.RWMutex
	commands    map[string]Command
	meta        map[string]*Metadata
	middlewares []Middleware
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
		meta:     make(map[string]*Metadata),
	}
}

// Use adds middlewares applied to every command registered afterwards.
func (r *Registry) Use(mws ...Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middlewares = append(r.middlewares, mws...)
}

// Register derives the handler's grammar and stores it under its name. A
// later registration under the same name replaces the earlier one. Errors are
// structural and mean the command was not registered.
func (r *Registry) Register(handler any, opts ...Option) (Command, error) {
	spec, err := inspectHandler(handler)
	if err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	name := o.name
	if name == "" {
		name = spec.name
	}
	if name == "" {
		return nil, fmt.Errorf("%w: closures need cmd.Name", ErrNoName)
	}
	if !paramNameRe.MatchString(name) {
		return nil, fmt.Errorf("%w: bad command name %q", ErrInvalidGrammar, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.metaLocked(name)
	for _, apply := range o.meta {
		apply(m)
	}

	var c Command = &handlerCommand{
		name: name,
		help: o.help,
		spec: spec,
		meta: func() Metadata { return r.Metadata(name) },
	}
	c = Apply(c, r.middlewares...)
	r.commands[name] = c
	return c, nil
}

// MustRegister is Register for startup code where a structural error should
// abort the process.
func (r *Registry) MustRegister(handler any, opts ...Option) Command {
	c, err := r.Register(handler, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Get returns the command with the given name.
func (r *Registry) Get(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.commands[name]
	return c, ok
}

// All returns all registered commands, sorted by name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	list := make([]Command, 0, len(r.commands))
	for _, c := range r.commands {
		list = append(list, c)
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		return list[i].Name() < list[j].Name()
	})
	return list
}

// Metadata returns a copy of the restrictions attached to a name.
func (r *Registry) Metadata(name string) Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.meta[name]; ok {
		return m.clone()
	}
	return Metadata{}
}

// OwnerOnly restricts the named command to the application owner. It may be
// called before or after the command is registered.
func (r *Registry) OwnerOnly(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metaLocked(name).OwnerOnly = true
}

// PermissionsRequired requires every listed permission flag for the named
// command; message is sent to the channel when the invoker lacks one.
func (r *Registry) PermissionsRequired(name string, permissions []string, message string) {
	apply := requirePermissions(permissions, message)
	r.mu.Lock()
	defer r.mu.Unlock()
	apply(r.metaLocked(name))
}

// Admin is PermissionsRequired with the administrator flag alone.
func (r *Registry) Admin(name string, message string) {
	if message == "" {
		message = DefaultAdminMessage
	}
	r.PermissionsRequired(name, []string{AdministratorPermission}, message)
}

func (r *Registry) metaLocked(name string) *Metadata {
	m, ok := r.meta[name]
	if !ok {
		m = &Metadata{}
		r.meta[name] = m
	}
	return m
}
