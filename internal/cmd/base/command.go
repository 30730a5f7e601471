// Package base provides the shared command scaffolding used by every
// fatcat CLI subcommand: a common logger/UI embed and a flag.FlagSet
// wrapper that renders a usage string alongside mitchellh/cli's Help.
package base

import (
	"bytes"
	"flag"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
)

// Command is embedded by every subcommand to give it a logger and a UI
// without each subcommand repeating the plumbing.
type Command struct {
	UI  cli.Ui
	Log hclog.Logger
}

// FlagSet wraps a *flag.FlagSet so subcommands can render their flags as
// part of mitchellh/cli's Help() output.
type FlagSet struct {
	*flag.FlagSet
}

// NewFlagSet wraps an existing *flag.FlagSet.
func NewFlagSet(f *flag.FlagSet) *FlagSet {
	return &FlagSet{FlagSet: f}
}

// Help renders the flag defaults as a string suitable for appending to a
// command's Help() text.
func (f *FlagSet) Help() string {
	var buf bytes.Buffer
	old := f.FlagSet.Output()
	f.FlagSet.SetOutput(&buf)
	f.FlagSet.PrintDefaults()
	f.FlagSet.SetOutput(old)
	if buf.Len() == 0 {
		return ""
	}
	return "\nOptions:\n\n" + buf.String()
}
