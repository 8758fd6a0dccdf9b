package installer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/swbuilder/swb/internal/logging"
	"github.com/swbuilder/swb/internal/paths"
)

func TestScanTarget(t *testing.T) {
	home := t.TempDir()
	inst := newTestInstaller(t, Config{Home: home, Force: true})
	if _, err := inst.Install(t.Context(), PluginLayout()); err != nil {
		t.Fatalf("Install: %v", err)
	}

	scanner := NewScannerWithLogger(logging.ForTest(t))
	target := Target{Assistant: paths.AssistantClaude, Home: home, Scope: "user"}
	states := scanner.ScanTarget(target, Layouts())

	if len(states) != 2 {
		t.Fatalf("got %d states, want 2", len(states))
	}

	plugin := states[0]
	if plugin.Layout != "plugin" {
		t.Fatalf("states[0] is %q, want plugin", plugin.Layout)
	}
	if !plugin.Complete() {
		t.Errorf("plugin incomplete, missing %v", plugin.Missing)
	}
	if plugin.Version != "1.2.0" {
		t.Errorf("plugin version = %q, want 1.2.0", plugin.Version)
	}
	if plugin.Scope != "user" {
		t.Errorf("plugin scope = %q, want user", plugin.Scope)
	}

	skill := states[1]
	if skill.Installed {
		t.Error("skill reported installed in a plugin-only home")
	}
}

func TestScanTarget_DetectsIncomplete(t *testing.T) {
	home := t.TempDir()
	inst := newTestInstaller(t, Config{Home: home, Force: true})
	layout := SkillLayout()
	if _, err := inst.Install(t.Context(), layout); err != nil {
		t.Fatalf("Install: %v", err)
	}
	if err := os.Remove(filepath.Join(layout.DestDir(home), "SKILL.md")); err != nil {
		t.Fatal(err)
	}

	scanner := NewScannerWithLogger(logging.ForTest(t))
	states := scanner.ScanTarget(Target{Assistant: paths.AssistantClaude, Home: home}, []Layout{layout})

	if len(states) != 1 {
		t.Fatalf("got %d states, want 1", len(states))
	}
	if !states[0].Installed {
		t.Error("damaged install reported as absent")
	}
	if states[0].Complete() {
		t.Error("damaged install reported as complete")
	}
}

func TestScanAll_OrderIsStable(t *testing.T) {
	// Install into the second target only; order must still follow the
	// target slice, not completion order.
	homes := []string{t.TempDir(), t.TempDir(), t.TempDir()}
	inst := newTestInstaller(t, Config{Home: homes[1], Force: true})
	if _, err := inst.Install(t.Context(), PluginLayout()); err != nil {
		t.Fatalf("Install: %v", err)
	}

	targets := []Target{
		{Assistant: paths.AssistantClaude, Home: homes[0], Scope: "user"},
		{Assistant: paths.AssistantCodex, Home: homes[1], Scope: "user"},
		{Assistant: paths.AssistantCursor, Home: homes[2], Scope: "user"},
	}

	scanner := NewScannerWithLogger(logging.ForTest(t))
	states, err := scanner.ScanAll(t.Context(), targets, Layouts())
	if err != nil {
		t.Fatalf("ScanAll: %v", err)
	}

	if len(states) != 6 {
		t.Fatalf("got %d states, want 6", len(states))
	}
	wantAssistants := []string{
		paths.AssistantClaude, paths.AssistantClaude,
		paths.AssistantCodex, paths.AssistantCodex,
		paths.AssistantCursor, paths.AssistantCursor,
	}
	for i, state := range states {
		if state.Assistant != wantAssistants[i] {
			t.Errorf("states[%d].Assistant = %q, want %q", i, state.Assistant, wantAssistants[i])
		}
	}
	if !states[2].Installed {
		t.Error("install in second target not seen")
	}
	if states[0].Installed || states[4].Installed {
		t.Error("phantom install in empty target")
	}
}

func TestScanAll_Empty(t *testing.T) {
	scanner := NewScannerWithLogger(logging.ForTest(t))
	if states, err := scanner.ScanAll(t.Context(), nil, Layouts()); err != nil || states != nil {
		t.Errorf("ScanAll(nil) = %v, %v, want nil, nil", states, err)
	}
	if states, err := scanner.ScanAll(t.Context(), []Target{{Home: t.TempDir()}}, nil); err != nil || states != nil {
		t.Errorf("ScanAll with no layouts = %v, %v, want nil, nil", states, err)
	}
}

func TestScanAll_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	scanner := NewScannerWithLogger(logging.ForTest(t))
	targets := []Target{{Assistant: paths.AssistantClaude, Home: t.TempDir(), Scope: "user"}}
	states, err := scanner.ScanAll(ctx, targets, Layouts())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if states != nil {
		t.Errorf("states = %v, want nil", states)
	}
}
