package main

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/hypergraph/internal/ui"
)

var (
	// Unindented line ending in a colon: "Graph:", "Flags:".
	reGroupHeader = regexp.MustCompile(`(?m)^([A-Z][^\n]*:)[ \t]*$`)

	// Command row: two-space indent, the name, then padding before the description.
	reCommand = regexp.MustCompile(`(?m)^(  )(\S+)(  )`)

	// Value type after a flag name: "--graph string", "--source strings".
	reFlagType = regexp.MustCompile(`(--?\S+\s+)(stringArray|strings|string|int|duration)\b`)

	// (default "graph.json") or (default 0s). Placeholders like [flags] are left alone.
	reDefault = regexp.MustCompile(`\(default "?[^)"]*"?\)`)
)

// helpRule styles one capture group of every match of re.
type helpRule struct {
	re    *regexp.Regexp
	group int
	style func(string) string
}

func helpRules() []helpRule {
	return []helpRule{
		{reGroupHeader, 1, ui.RenderAccent},
		{reCommand, 2, ui.RenderCommand},
		{reFlagType, 2, ui.RenderMuted},
		{reDefault, 0, ui.RenderMuted},
	}
}

func (r helpRule) apply(s string) string {
	var b strings.Builder
	last := 0
	for _, m := range r.re.FindAllStringSubmatchIndex(s, -1) {
		start, end := m[2*r.group], m[2*r.group+1]
		if start < 0 {
			continue
		}
		b.WriteString(s[last:start])
		b.WriteString(r.style(s[start:end]))
		last = end
	}
	b.WriteString(s[last:])
	return b.String()
}

// colorizedHelpFunc renders Cobra's usage text and colors it when the
// command writes to a color-capable terminal.
func colorizedHelpFunc() func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, _ []string) {
		if !ui.ShouldUseColorFor(outFile(cmd)) {
			_ = cmd.Usage()
			return
		}
		out := cmd.OutOrStdout()
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		_ = cmd.Usage()
		cmd.SetOut(out)
		fmt.Fprint(out, colorizeHelpOutput(buf.String()))
	}
}

func colorizeHelpOutput(s string) string {
	for _, r := range helpRules() {
		s = r.apply(s)
	}
	return s
}
