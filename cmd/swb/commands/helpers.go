package commands

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"

	"github.com/swbuilder/swb/internal/cli"
	"github.com/swbuilder/swb/internal/config"
	errs "github.com/swbuilder/swb/internal/errors"
	"github.com/swbuilder/swb/internal/installer"
)

// Shared output styles. Color is disabled automatically when stdout is
// not a terminal or NO_COLOR is set; 'swb config set color' overrides.
var (
	boldStyle    = color.New(color.Bold)
	successStyle = color.New(color.FgGreen)
	warnStyle    = color.New(color.FgYellow)
	errorStyle   = color.New(color.FgRed)
	dimStyle     = color.New(color.FgHiBlack)
)

// truncate shortens a string to maxLen characters, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// currentConfig returns the configuration loaded at startup, falling
// back to defaults when loading failed or has not happened yet.
func currentConfig() *config.Config {
	if loadedConfig != nil {
		return loadedConfig
	}
	return config.Default()
}

// layoutFromArgs resolves the optional positional layout argument,
// defaulting to the full plugin layout.
func layoutFromArgs(args []string) (installer.Layout, error) {
	if len(args) == 0 {
		return installer.PluginLayout(), nil
	}
	layout, err := installer.LayoutByName(args[0])
	if err != nil {
		return installer.Layout{}, errs.NewUserError(err,
			"Valid layouts: plugin, skill.")
	}
	return layout, nil
}

// layoutsFromArgs resolves the optional positional layout argument for
// commands that default to every layout when none is given.
func layoutsFromArgs(args []string) ([]installer.Layout, error) {
	if len(args) == 0 {
		return installer.Layouts(), nil
	}
	layout, err := layoutFromArgs(args)
	if err != nil {
		return nil, err
	}
	return []installer.Layout{layout}, nil
}

// resolveTargetAssistant resolves the single assistant a mutating
// command operates on, from the --assistant flag or the config default.
func resolveTargetAssistant() (string, error) {
	flagged := GetAssistantFlag()
	if len(flagged) > 1 {
		return "", errs.NewUserError(
			errors.New("this command targets one assistant at a time"),
			"Pass a single --assistant value.")
	}

	var name string
	if len(flagged) == 1 {
		name = flagged[0]
	}
	assistant, err := cli.ResolveAssistant(name, currentConfig().Assistant)
	if err != nil {
		return "", errs.NewUserError(err, "")
	}
	return assistant, nil
}

// resolveProjectRoot maps the --project flag to an install root: the
// current working directory when set, empty (user scope) otherwise.
func resolveProjectRoot(project bool) (string, error) {
	if !project {
		return "", nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", errs.NewSystemError(errors.Wrap(err, "resolving working directory"), "")
	}
	return cwd, nil
}

// resolveInstallHome resolves the assistant home a command reads from
// or writes to, honoring --assistant and --project.
func resolveInstallHome(project bool) (assistant, home string, err error) {
	assistant, err = resolveTargetAssistant()
	if err != nil {
		return "", "", err
	}
	projectRoot, err := resolveProjectRoot(project)
	if err != nil {
		return "", "", err
	}
	// InstallHome classifies its own failures.
	home, err = cli.InstallHome(assistant, projectRoot)
	if err != nil {
		return "", "", err
	}
	return assistant, home, nil
}
