package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/menubot/internal/chat/memory"
	"github.com/keshon/menubot/internal/permission"
	"github.com/keshon/menubot/pkg/cmd"
)

var (
	bot   = &discordgo.User{ID: "bot", Username: "menubot", Bot: true}
	alice = &discordgo.User{ID: "alice", Username: "alice"}
)

type greetArgs struct {
	Name string `arg:"name" help:"who to greet"`
}

type fixture struct {
	tr       *memory.Transport
	registry *cmd.Registry
	d        *Dispatcher
	calls    []string
	mu       sync.Mutex
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{tr: memory.New(bot, "owner"), registry: cmd.NewRegistry()}
	f.tr.AddChannel("general", "guild")

	f.registry.MustRegister(func(ctx context.Context, inv *cmd.Invocation, a greetArgs) error {
		f.mu.Lock()
		f.calls = append(f.calls, a.Name)
		f.mu.Unlock()
		_, err := f.tr.Send(ctx, inv.ChannelID(), "hello "+a.Name)
		return err
	}, cmd.Name("greet"), cmd.Help("Say hello"))

	d, err := New(Options{
		Registry:  f.registry,
		Pipeline:  permission.NewPipeline(nil, permission.Default(f.tr)...),
		Transport: f.tr,
		Prefix:    "!",
		Title:     "menubot",
	})
	require.NoError(t, err)
	f.d = d
	return f
}

func (f *fixture) say(t *testing.T, author *discordgo.User, content string) error {
	t.Helper()
	return f.d.OnMessage(context.Background(), f.tr.Post("general", author, content))
}

func TestOnMessage_InvokesOnce(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.say(t, alice, `!greet name:"Alice Smith"`))
	assert.Equal(t, []string{"Alice Smith"}, f.calls)
	assert.Equal(t, "hello Alice Smith", f.tr.Last("general").Content)
}

func TestOnMessage_KeepsHashWords(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.say(t, alice, "!greet #alice"))
	require.NoError(t, f.say(t, alice, "!greet name:#bob"))
	assert.Equal(t, []string{"#alice", "#bob"}, f.calls)
	assert.Empty(t, f.tr.Direct(alice.ID))
}

func TestSplit(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"greet #alice", []string{"greet", "#alice"}},
		{"greet a#b", []string{"greet", "a#b"}},
		{"greet \"#x y\"", []string{"greet", "#x y"}},
		{"greet '#x' #", []string{"greet", "#x", "#"}},
		{"greet \\#x", []string{"greet", "#x"}},
		{"greet \"a \\\" #b\"", []string{"greet", "a \" #b"}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := split(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOnMessage_IgnoresUnprefixedAndOwnMessages(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.say(t, alice, "greet name:Alice"))
	require.NoError(t, f.say(t, alice, "hello !greet name:Alice"))
	require.NoError(t, f.say(t, bot, "!greet name:Alice"))

	assert.Empty(t, f.calls)
	assert.Empty(t, f.tr.Direct(alice.ID))
	assert.Len(t, f.tr.Messages("general"), 3)
}

func TestOnMessage_UsageErrorsGoToDirectMessages(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"missing argument", "!greet", "menubot greet: error: the following arguments are required: name"},
		{"unknown command", "!shout", `menubot: error: argument command: invalid choice: "shout"`},
		{"empty", "!", "menubot: error: the following arguments are required: command"},
		{"unclosed quote", `!greet "Alice`, "menubot: error:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			require.NoError(t, f.say(t, alice, tt.content))

			dms := f.tr.Direct(alice.ID)
			require.Len(t, dms, 1)
			assert.Contains(t, dms[0].Content, tt.want)
			assert.Contains(t, dms[0].Content, "usage: menubot")
			assert.Empty(t, f.calls)
			// nothing was posted to the channel
			assert.Len(t, f.tr.Messages("general"), 1)
		})
	}
}

func TestOnMessage_NextDispatchUnaffectedByFailure(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.say(t, alice, "!greet"))
	require.NoError(t, f.say(t, alice, "!greet Bob"))
	assert.Equal(t, []string{"Bob"}, f.calls)
}

func TestOnMessage_PermissionDenied(t *testing.T) {
	f := newFixture(t)
	ran := false
	f.registry.MustRegister(func() { ran = true }, cmd.Name("purge"), cmd.WithAdmin(""))

	require.NoError(t, f.say(t, alice, "!purge"))
	assert.False(t, ran)
	assert.Equal(t, "<@alice> that command requires admin privileges.", f.tr.Last("general").Content)
}

func TestOnMessage_HandlerErrorReported(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("boom")
	f.registry.MustRegister(func() error { return boom }, cmd.Name("fail"))

	err := f.say(t, alice, "!fail")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "Error running command: boom", f.tr.Last("general").Content)

	require.NoError(t, f.say(t, alice, "!greet Eve"))
	assert.Equal(t, []string{"Eve"}, f.calls)
}

func TestOnMessage_Concurrent(t *testing.T) {
	f := newFixture(t)
	var wg sync.WaitGroup
	for range 20 {
		msg := f.tr.Post("general", alice, "!greet x")
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, f.d.OnMessage(context.Background(), msg))
		}()
	}
	wg.Wait()
	assert.Len(t, f.calls, 20)
}

func TestNew_Validates(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
	_, err = New(Options{Registry: cmd.NewRegistry(), Transport: memory.New(bot, "")})
	assert.Error(t, err)
}
