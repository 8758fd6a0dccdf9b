// Package config provides configuration management for the swb CLI.
//
// This package handles loading, saving, and validating swb's own
// configuration file. It is distinct from assistant settings files
// (settings.json, config.toml) which are managed by the settings
// package.
//
// # Configuration File
//
// The default configuration file location is ~/.config/swb/config.yaml.
// The configuration file uses YAML format with the following structure:
//
//	version: 1
//	assistant: claude
//	color: auto         # auto | always | never
//	backup:
//	  retention: 5
//	  disabled: false
//
// # Loading Configuration
//
// Call [Init] once at startup, then [Load]:
//
//	config.Init()
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//
// An empty path searches the working directory and the XDG config home;
// a missing file falls back to [Default] values. An explicit path that
// does not exist is an error.
//
// Every setting can be overridden through the environment with the SWB
// prefix, e.g. SWB_ASSISTANT=codex or SWB_BACKUP_RETENTION=10.
//
// # Validation
//
// Load validates automatically. Use [Validate] to check a Config built
// by hand:
//
//	errs := config.Validate(cfg)
//	if len(errs) > 0 {
//	    for _, e := range errs {
//	        fmt.Println(e)
//	    }
//	}
package config
