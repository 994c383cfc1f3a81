package cli

import (
	"io"
	"testing"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	want := []string{
		"edit", "export", "maps", "serve",
		"login", "logout", "whoami", "cache", "completion",
	}
	for _, name := range want {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command is missing %q", name)
		}
	}
}

func TestRootCommandSetup(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	if root.Use != "mindgrid" {
		t.Errorf("Use = %q, want %q", root.Use, "mindgrid")
	}
	if !root.SilenceUsage {
		t.Error("SilenceUsage should be set")
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("root command should carry the --config flag")
	}
}

func TestMapsSubcommands(t *testing.T) {
	c := New(io.Discard, LogInfo)
	maps := c.mapsCommand()

	want := map[string]bool{"list": false, "create": false, "rename": false, "delete": false}
	for _, sub := range maps.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("maps command is missing %q", name)
		}
	}
}

func TestStoreFlagsRegistered(t *testing.T) {
	c := New(io.Discard, LogInfo)
	for _, cmd := range []string{"edit", "export"} {
		for _, sub := range c.RootCommand().Commands() {
			if sub.Name() != cmd {
				continue
			}
			if sub.Flags().Lookup("file") == nil {
				t.Errorf("%s should carry the --file flag", cmd)
			}
			if sub.Flags().Lookup("remote") == nil {
				t.Errorf("%s should carry the --remote flag", cmd)
			}
		}
	}
}
