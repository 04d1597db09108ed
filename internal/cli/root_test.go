package cli

import (
	"io"
	"strings"
	"testing"

	"github.com/flowsmith/flowsmith/pkg/template"
)

func TestRootCommandSubcommands(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	want := map[string]bool{
		"assemble":   false,
		"validate":   false,
		"layout":     false,
		"preview":    false,
		"templates":  false,
		"cache":      false,
		"completion": false,
	}

	for _, sub := range root.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}

	for name, found := range want {
		if !found {
			t.Errorf("root command missing subcommand %q", name)
		}
	}
}

func TestBuildOptionsDefaultName(t *testing.T) {
	c := New(io.Discard, LogInfo)

	opts, err := c.buildOptions("flows/order-sync.json", "", "", false)
	if err != nil {
		t.Fatalf("buildOptions() error: %v", err)
	}
	if opts.FlowName != "order-sync" {
		t.Errorf("FlowName = %q, want %q", opts.FlowName, "order-sync")
	}

	opts, err = c.buildOptions("flows/order-sync.json", "Orders", "", true)
	if err != nil {
		t.Fatalf("buildOptions() error: %v", err)
	}
	if opts.FlowName != "Orders" {
		t.Errorf("FlowName = %q, want %q", opts.FlowName, "Orders")
	}
	if !opts.Refresh {
		t.Error("Refresh flag should carry through")
	}
}

func TestSlotString(t *testing.T) {
	tests := []struct {
		slots template.Slots
		want  string
	}{
		{template.Slots{Min: 1, Max: 1}, "1"},
		{template.Slots{Min: 0, Max: 1}, "0-1"},
		{template.Slots{Min: 1, Max: -1}, "1+"},
		{template.Slots{Min: 0, Max: -1}, "0+"},
	}

	for _, tt := range tests {
		if got := slotString(tt.slots); got != tt.want {
			t.Errorf("slotString(%+v) = %q, want %q", tt.slots, got, tt.want)
		}
	}
}

func TestTemplateTableListsAllTypes(t *testing.T) {
	specs := template.Default().Specs()
	out := templateTable(specs, -1, len(specs), 0)

	for _, s := range specs {
		if !strings.Contains(out, s.Type) {
			t.Errorf("template table missing type %q", s.Type)
		}
	}
}
