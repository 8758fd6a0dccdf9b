package manifest

import (
	"strings"
	"testing"
)

func validPlugin() *Plugin {
	return &Plugin{
		Name:        "signalwire-builder",
		Description: "Build SignalWire AI voice agents",
		Version:     "1.2.0",
	}
}

func TestValidatePlugin(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Plugin)
		wantErr string
	}{
		{
			name:   "valid plugin",
			mutate: func(*Plugin) {},
		},
		{
			name:    "missing name",
			mutate:  func(p *Plugin) { p.Name = "" },
			wantErr: "name is required",
		},
		{
			name:    "uppercase name",
			mutate:  func(p *Plugin) { p.Name = "SignalWire-Builder" },
			wantErr: "lowercase",
		},
		{
			name:    "consecutive hyphens",
			mutate:  func(p *Plugin) { p.Name = "signalwire--builder" },
			wantErr: "lowercase",
		},
		{
			name:    "trailing hyphen",
			mutate:  func(p *Plugin) { p.Name = "signalwire-" },
			wantErr: "lowercase",
		},
		{
			name:    "name too long",
			mutate:  func(p *Plugin) { p.Name = strings.Repeat("a", 65) },
			wantErr: "exceeds",
		},
		{
			name:    "missing description",
			mutate:  func(p *Plugin) { p.Description = "  " },
			wantErr: "description is required",
		},
		{
			name:    "missing version",
			mutate:  func(p *Plugin) { p.Version = "" },
			wantErr: "version is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPlugin()
			tt.mutate(p)
			errs := ValidatePlugin(p)

			if tt.wantErr == "" {
				if errs != nil {
					t.Errorf("ValidatePlugin() = %v, want nil", errs)
				}
				return
			}

			found := false
			for _, err := range errs {
				if strings.Contains(err.Error(), tt.wantErr) {
					found = true
				}
			}
			if !found {
				t.Errorf("ValidatePlugin() = %v, want error containing %q", errs, tt.wantErr)
			}
		})
	}
}

func TestValidateSkill(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		s := &Skill{Name: "signalwire", Description: "Build voice agents"}
		if errs := ValidateSkill(s); errs != nil {
			t.Errorf("ValidateSkill() = %v, want nil", errs)
		}
	})

	t.Run("missing description", func(t *testing.T) {
		s := &Skill{Name: "signalwire"}
		errs := ValidateSkill(s)
		if len(errs) != 1 {
			t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
		}
	})

	t.Run("oversized description", func(t *testing.T) {
		s := &Skill{Name: "signalwire", Description: strings.Repeat("x", maxDescriptionLength+1)}
		if errs := ValidateSkill(s); errs == nil {
			t.Error("expected error for oversized description")
		}
	})
}

func TestValidateSkillPath(t *testing.T) {
	s := &Skill{Name: "signalwire", Description: "Build voice agents"}

	t.Run("matching directory", func(t *testing.T) {
		if errs := ValidateSkillPath(s, "skills/signalwire/SKILL.md"); errs != nil {
			t.Errorf("ValidateSkillPath() = %v, want nil", errs)
		}
	})

	t.Run("mismatched directory", func(t *testing.T) {
		errs := ValidateSkillPath(s, "skills/other/SKILL.md")
		if errs == nil {
			t.Fatal("expected directory mismatch error")
		}
		if !strings.Contains(errs[0].Error(), "does not match directory") {
			t.Errorf("error = %v", errs[0])
		}
	})
}

func TestValidateMarketplace(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		m := &Marketplace{
			Name: "signalwire-marketplace",
			Plugins: []MarketplaceEntry{
				{Name: "signalwire-builder", Source: "./"},
			},
		}
		if errs := ValidateMarketplace(m); errs != nil {
			t.Errorf("ValidateMarketplace() = %v, want nil", errs)
		}
	})

	t.Run("empty plugin list", func(t *testing.T) {
		m := &Marketplace{Name: "empty-marketplace"}
		if errs := ValidateMarketplace(m); errs == nil {
			t.Error("expected error for empty plugin list")
		}
	})

	t.Run("entry missing source", func(t *testing.T) {
		m := &Marketplace{
			Name:    "m",
			Plugins: []MarketplaceEntry{{Name: "p"}},
		}
		errs := ValidateMarketplace(m)
		found := false
		for _, err := range errs {
			if strings.Contains(err.Error(), "source is required") {
				found = true
			}
		}
		if !found {
			t.Errorf("ValidateMarketplace() = %v, want source error", errs)
		}
	})
}
