package cmd

import "slices"

// AdministratorPermission is the flag Admin requires.
const AdministratorPermission = "administrator"

// Default check-failed messages. {name} and {mention} are substituted with
// the invoker's display name and mention.
const (
	DefaultCheckFailedMessage = "Permission check failed"
	DefaultAdminMessage       = "{mention} that command requires admin privileges."
)

// Metadata is the restriction set of a command. The zero value means no
// restriction at all.
type Metadata struct {
	OwnerOnly           bool
	PermissionsRequired []string
	CheckFailedMessage  string
}

// Restricted reports whether any check has something to enforce.
func (m Metadata) Restricted() bool {
	return m.OwnerOnly || len(m.PermissionsRequired) > 0
}

func (m Metadata) clone() Metadata {
	m.PermissionsRequired = slices.Clone(m.PermissionsRequired)
	return m
}

// Option configures a command at registration.
type Option func(*options)

type options struct {
	name string
	help string
	meta []func(*Metadata)
}

// Name overrides the name derived from the handler's identifier.
func Name(name string) Option {
	return func(o *options) { o.name = name }
}

// Help sets the one-line help text.
func Help(text string) Option {
	return func(o *options) { o.help = text }
}

// WithOwnerOnly restricts the command to the application owner.
func WithOwnerOnly() Option {
	return func(o *options) {
		o.meta = append(o.meta, func(m *Metadata) { m.OwnerOnly = true })
	}
}

// WithPermissions requires every listed permission flag.
func WithPermissions(permissions []string, message string) Option {
	return func(o *options) {
		o.meta = append(o.meta, requirePermissions(permissions, message))
	}
}

// WithAdmin is WithPermissions for the administrator flag alone.
func WithAdmin(message string) Option {
	if message == "" {
		message = DefaultAdminMessage
	}
	return WithPermissions([]string{AdministratorPermission}, message)
}

func requirePermissions(permissions []string, message string) func(*Metadata) {
	if message == "" {
		message = DefaultCheckFailedMessage
	}
	perms := slices.Clone(permissions)
	return func(m *Metadata) {
		m.PermissionsRequired = perms
		m.CheckFailedMessage = message
	}
}
