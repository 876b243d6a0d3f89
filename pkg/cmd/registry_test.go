package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RunBindsArguments(t *testing.T) {
	r := NewRegistry()
	var got greetArgs
	var gotInv *Invocation
	c, err := r.Register(func(ctx context.Context, inv *Invocation, a greetArgs) error {
		got, gotInv = a, inv
		return nil
	}, Name("greet"))
	require.NoError(t, err)

	args, err := c.Schema().Parse([]string{"name:Alice"})
	require.NoError(t, err)
	inv := &Invocation{Args: args}
	require.NoError(t, c.Run(context.Background(), inv))

	assert.Equal(t, "Alice", got.Name)
	assert.Same(t, inv, gotInv)
}

func TestRegistry_RunPointerArgsAndParamOrder(t *testing.T) {
	r := NewRegistry()
	var got *mixedArgs
	c := r.MustRegister(func(a *mixedArgs, ctx context.Context) {
		got = a
	}, Name("mix"))

	args, err := c.Schema().Parse([]string{"hi", "count:2", "--fast"})
	require.NoError(t, err)
	require.NoError(t, c.Run(context.Background(), &Invocation{Args: args}))

	require.NotNil(t, got)
	assert.Equal(t, "hi", got.Title)
	assert.Equal(t, 2, got.Count)
	assert.Equal(t, "fast", got.Mode)
	assert.True(t, got.Quiet)
}

func TestRegistry_HandlerErrorPropagates(t *testing.T) {
	r := NewRegistry()
	boom := assert.AnError
	c := r.MustRegister(func() error { return boom }, Name("boom"))
	assert.ErrorIs(t, c.Run(context.Background(), nil), boom)
}

func TestRegistry_LastRegistrationWins(t *testing.T) {
	r := NewRegistry()
	calls := ""
	r.MustRegister(func() { calls += "a" }, Name("x"))
	r.MustRegister(func() { calls += "b" }, Name("x"))

	c, ok := r.Get("x")
	require.True(t, ok)
	require.NoError(t, c.Run(context.Background(), &Invocation{}))
	assert.Equal(t, "b", calls)
	assert.Len(t, r.All(), 1)
}

func TestRegistry_MetadataBuilders(t *testing.T) {
	r := NewRegistry()

	// attached before registration
	r.OwnerOnly("shutdown")
	c := r.MustRegister(func() {}, Name("shutdown"))
	assert.True(t, c.Metadata().OwnerOnly)
	assert.Empty(t, c.Metadata().PermissionsRequired)

	// attached after registration
	c = r.MustRegister(func() {}, Name("purge"))
	assert.False(t, c.Metadata().Restricted())
	r.Admin("purge", "")
	m := c.Metadata()
	assert.Equal(t, []string{AdministratorPermission}, m.PermissionsRequired)
	assert.Equal(t, DefaultAdminMessage, m.CheckFailedMessage)

	// inline options
	c = r.MustRegister(func() {}, Name("kick"),
		WithPermissions([]string{"kick_members"}, "{name} can't kick"), WithOwnerOnly())
	m = c.Metadata()
	assert.True(t, m.OwnerOnly)
	assert.Equal(t, []string{"kick_members"}, m.PermissionsRequired)
	assert.Equal(t, "{name} can't kick", m.CheckFailedMessage)

	r.PermissionsRequired("ban", []string{"ban_members"}, "")
	assert.Equal(t, DefaultCheckFailedMessage, r.Metadata("ban").CheckFailedMessage)
}

func TestRegistry_MetadataIsCopied(t *testing.T) {
	r := NewRegistry()
	c := r.MustRegister(func() {}, Name("x"), WithAdmin(""))
	m := c.Metadata()
	m.PermissionsRequired[0] = "mutated"
	assert.Equal(t, AdministratorPermission, c.Metadata().PermissionsRequired[0])
}

func TestRegistry_MiddlewareKeepsIdentity(t *testing.T) {
	r := NewRegistry()
	var order []string
	r.Use(func(c Command) Command {
		return Wrap(c, func(ctx context.Context, inv *Invocation) error {
			order = append(order, "before")
			err := c.Run(ctx, inv)
			order = append(order, "after")
			return err
		})
	})
	c := r.MustRegister(func() { order = append(order, "run") }, Name("x"), Help("does x"), WithOwnerOnly())

	require.NoError(t, c.Run(context.Background(), &Invocation{}))
	assert.Equal(t, []string{"before", "run", "after"}, order)
	assert.Equal(t, "x", c.Name())
	assert.Equal(t, "does x", c.Description())
	assert.True(t, c.Metadata().OwnerOnly)
	assert.IsType(t, &handlerCommand{}, Root(c))
}

func TestRegistry_RejectsBadName(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register(func() {}, Name("two words"))
	assert.ErrorIs(t, err, ErrInvalidGrammar)
	_, ok := r.Get("two words")
	assert.False(t, ok)
}
