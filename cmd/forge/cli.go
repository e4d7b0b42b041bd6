// Package main defines the CLI structure using kong.
package main

import "github.com/alecthomas/kong"

// CLI defines the command-line interface.
type CLI struct {
	Run     RunCmd     `cmd:"" help:"Generate a project from a requirement"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// RunCmd runs the full generation pipeline for one requirement.
type RunCmd struct {
	Requirement string `arg:"" help:"Natural-language project requirement"`
	Config      string `help:"Config file path" default:"forge.toml"`
	Projects    string `help:"Base directory for generated projects (overrides config)"`
	NoViz       bool   `help:"Disable the status dashboard"`
	Debug       bool   `help:"Enable debug logging"`
}

// VersionCmd shows version information.
type VersionCmd struct{}

// kongVars returns variables for kong (version info).
func kongVars() kong.Vars {
	return kong.Vars{
		"version": version,
	}
}
