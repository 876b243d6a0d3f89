package cmd

import (
	"context"
	"reflect"
)

// Command is the universal contract: identity, grammar, restrictions and
// execution. Inv.Args must already hold arguments parsed by Schema().Parse.
type Command interface {
	Name() string
	Description() string
	Schema() *Schema
	Metadata() Metadata
	Run(ctx context.Context, inv *Invocation) error
}

// handlerCommand runs a reflected handler func.
type handlerCommand struct {
	name string
	help string
	spec *handlerSpec
	meta func() Metadata
}

func (c *handlerCommand) Name() string        { return c.name }
func (c *handlerCommand) Description() string { return c.help }
func (c *handlerCommand) Schema() *Schema     { return c.spec.schema }

func (c *handlerCommand) Metadata() Metadata {
	if c.meta == nil {
		return Metadata{}
	}
	return c.meta()
}

// Run calls the handler with the context, invocation and argument struct in
// the order it declared them.
func (c *handlerCommand) Run(ctx context.Context, inv *Invocation) error {
	if inv == nil {
		inv = &Invocation{}
	}
	in := make([]reflect.Value, len(c.spec.slots))
	for i, s := range c.spec.slots {
		switch s {
		case slotContext:
			in[i] = reflect.ValueOf(&ctx).Elem()
		case slotInvocation:
			in[i] = reflect.ValueOf(inv)
		case slotArgs:
			in[i] = c.spec.schema.bind(inv.Args)
		}
	}
	out := c.spec.fn.Call(in)
	if len(out) == 1 && !out[0].IsNil() {
		return out[0].Interface().(error)
	}
	return nil
}
