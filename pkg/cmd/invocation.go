// Package cmd is the command core: a command is a named handler with a parsing
// grammar derived from its declared parameters, plus the permission metadata
// the dispatcher checks before running it. How inbound text reaches a command
// (prefix, tokenizing, transport) is defined by the dispatcher that wraps this.
package cmd

import "github.com/bwmarrin/discordgo"

// Invocation is what a handler receives about the message that triggered it.
// A handler declares a *Invocation parameter to get it; the parameter never
// takes part in argument parsing.
type Invocation struct {
	Message *discordgo.Message
	Args    Arguments
}

// ChannelID returns the channel the invocation came from.
func (inv *Invocation) ChannelID() string {
	if inv == nil || inv.Message == nil {
		return ""
	}
	return inv.Message.ChannelID
}

// GuildID returns the guild of the invocation, empty for direct messages.
func (inv *Invocation) GuildID() string {
	if inv == nil || inv.Message == nil {
		return ""
	}
	return inv.Message.GuildID
}

// Author returns the invoking user, or nil.
func (inv *Invocation) Author() *discordgo.User {
	if inv == nil || inv.Message == nil {
		return nil
	}
	return inv.Message.Author
}

// Arguments maps parameter names to parsed values: string for string
// parameters, int64 for integers, bool for flags and the declared constant
// for constants. A fresh map is produced per invocation.
type Arguments map[string]any

// String returns a string argument, or "" when absent.
func (a Arguments) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// Int returns an integer argument, or 0 when absent.
func (a Arguments) Int(name string) int64 {
	n, _ := a[name].(int64)
	return n
}

// Bool returns a flag argument.
func (a Arguments) Bool(name string) bool {
	b, _ := a[name].(bool)
	return b
}

// Has reports whether a value (including a nil constant default) is present.
func (a Arguments) Has(name string) bool {
	_, ok := a[name]
	return ok
}
