package cmd

import (
	"fmt"
	"strings"
)

// Usage renders argparse-style help for one command.
func Usage(prog string, c Command) string {
	var sb strings.Builder
	s := c.Schema()

	fmt.Fprintf(&sb, "usage: %s %s", prog, c.Name())
	for _, p := range s.Params {
		sb.WriteByte(' ')
		sb.WriteString(synopsis(p))
	}
	sb.WriteByte('\n')

	if d := c.Description(); d != "" {
		fmt.Fprintf(&sb, "\n%s\n", d)
	}
	if len(s.Params) == 0 {
		return sb.String()
	}

	sb.WriteString("\narguments:\n")
	width := 0
	for _, p := range s.Params {
		width = max(width, len(form(p)))
	}
	for _, p := range s.Params {
		line := fmt.Sprintf("  %-*s", width, form(p))
		if p.Help != "" {
			line += "  " + p.Help
		}
		sb.WriteString(strings.TrimRight(line, " "))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Overview renders the top-level help listing every command.
func Overview(prog string, cmds []Command) string {
	var sb strings.Builder
	names := make([]string, len(cmds))
	width := 0
	for i, c := range cmds {
		names[i] = c.Name()
		width = max(width, len(c.Name()))
	}
	fmt.Fprintf(&sb, "usage: %s {%s} ...\n", prog, strings.Join(names, ","))
	if len(cmds) == 0 {
		return sb.String()
	}
	sb.WriteString("\ncommands:\n")
	for _, c := range cmds {
		line := fmt.Sprintf("  %-*s  %s", width, c.Name(), c.Description())
		sb.WriteString(strings.TrimRight(line, " "))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func form(p Param) string {
	switch p.Kind {
	case KindFlag, KindConstant:
		return "--" + p.Name
	}
	return p.Name + ":<" + p.Name + ">"
}

func synopsis(p Param) string {
	if p.Required {
		return form(p)
	}
	return "[" + form(p) + "]"
}
