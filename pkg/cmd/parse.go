package cmd

import (
	"fmt"
	"strconv"
	"strings"
)

// UsageError is a user-input error: bad or missing arguments, or an unknown
// command. It carries the help text the invoker should see.
type UsageError struct {
	Prog    string
	Command string
	Msg     string
	Usage   string
}

func (e *UsageError) Error() string {
	if e.Command == "" {
		return e.Msg
	}
	return e.Command + ": " + e.Msg
}

// Help is the usage text followed by the error line, argparse style.
func (e *UsageError) Help() string {
	prog := e.Prog
	if e.Command != "" {
		prog += " " + e.Command
	}
	return e.Usage + prog + ": error: " + e.Msg + "\n"
}

// Resolve picks the command named by the first token and parses the rest
// against its schema. Every failure is a *UsageError.
func (r *Registry) Resolve(prog string, tokens []string) (Command, Arguments, error) {
	if len(tokens) == 0 {
		return nil, nil, &UsageError{
			Prog:  prog,
			Msg:   "the following arguments are required: command",
			Usage: Overview(prog, r.All()),
		}
	}
	c, ok := r.Get(tokens[0])
	if !ok {
		cmds := r.All()
		names := make([]string, len(cmds))
		for i, c := range cmds {
			names[i] = strconv.Quote(c.Name())
		}
		return nil, nil, &UsageError{
			Prog:  prog,
			Msg:   fmt.Sprintf("argument command: invalid choice: %q (choose from %s)", tokens[0], strings.Join(names, ", ")),
			Usage: Overview(prog, cmds),
		}
	}
	args, err := c.Schema().Parse(tokens[1:])
	if err != nil {
		return nil, nil, &UsageError{
			Prog:    prog,
			Command: c.Name(),
			Msg:     err.Error(),
			Usage:   Usage(prog, c),
		}
	}
	return c, args, nil
}

// Parse binds tokens to the schema. Every declared parameter gets an entry in
// the result, holding its default when the tokens don't mention it.
func (s *Schema) Parse(tokens []string) (Arguments, error) {
	args := make(Arguments, len(s.Params))
	for _, p := range s.Params {
		args[p.Name] = p.Default
	}

	bound := make(map[string]bool)
	var extra []string
	optionsDone := false

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		if !optionsDone && tok == "--" {
			optionsDone = true
			continue
		}

		if !optionsDone && strings.HasPrefix(tok, "--") {
			name, inline, hasInline := strings.Cut(tok[2:], "=")
			p, ok := s.Lookup(name)
			if !ok {
				extra = append(extra, tok)
				continue
			}
			switch p.Kind {
			case KindFlag:
				if hasInline {
					return nil, fmt.Errorf("argument --%s: ignored explicit argument %q", name, inline)
				}
				args[p.Name] = !p.Default.(bool)
			case KindConstant:
				if hasInline {
					return nil, fmt.Errorf("argument --%s: ignored explicit argument %q", name, inline)
				}
				args[p.Name] = p.Const
			default:
				value := inline
				if !hasInline {
					if i+1 >= len(tokens) {
						return nil, fmt.Errorf("argument --%s: expected one argument", name)
					}
					i++
					value = tokens[i]
				}
				v, err := parseValue(p, value)
				if err != nil {
					return nil, err
				}
				args[p.Name] = v
				bound[p.Name] = true
			}
			continue
		}

		if !optionsDone {
			if name, value, ok := strings.Cut(tok, ":"); ok {
				if p, found := s.Lookup(name); found && p.TakesValue() {
					v, err := parseValue(p, value)
					if err != nil {
						return nil, err
					}
					args[p.Name] = v
					bound[p.Name] = true
					continue
				}
			}
		}

		p, ok := s.nextPositional(bound)
		if !ok {
			extra = append(extra, tok)
			continue
		}
		v, err := parseValue(p, tok)
		if err != nil {
			return nil, err
		}
		args[p.Name] = v
		bound[p.Name] = true
	}

	var missing []string
	for _, p := range s.Params {
		if p.Required && !bound[p.Name] {
			missing = append(missing, p.Name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("the following arguments are required: %s", strings.Join(missing, ", "))
	}
	if len(extra) > 0 {
		return nil, fmt.Errorf("unrecognized arguments: %s", strings.Join(extra, " "))
	}
	return args, nil
}

func (s *Schema) nextPositional(bound map[string]bool) (Param, bool) {
	for _, p := range s.Params {
		if p.TakesValue() && !bound[p.Name] {
			return p, true
		}
	}
	return Param{}, false
}

func parseValue(p Param, raw string) (any, error) {
	if p.Kind != KindInteger {
		return raw, nil
	}
	n, err := strconv.ParseInt(raw, 10, p.bits)
	if err != nil {
		return nil, fmt.Errorf("argument %s: invalid int value: %q", p.Name, raw)
	}
	return n, nil
}
