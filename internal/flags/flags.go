package flags

// Package flags defines canonical CLI flag names so the command wiring and the
// dry-run plan output refer to the same spelling.
// IMPORTANT: These are flag *names* without leading dashes.
// Example usage:
//
//	cmd.Flags().StringVar(&cfg.Mirror.TargetDir, flags.FlagTarget, "", "...")
//	arg := "--" + flags.FlagTarget
const (
	// Auth
	FlagToken  = "token"
	FlagAPIURL = "api-url"

	// Mirror
	FlagTarget = "target"
	FlagLayout = "layout"
	FlagDryRun = "dry-run"

	// Output
	FlagNoColor   = "no-color"
	FlagNoConsole = "no-console"
	FlagOut       = "out"
	FlagOutFormat = "out-format"
	FlagEmit      = "emit"

	// Runtime
	FlagConcurrency    = "concurrency"
	FlagOrgConcurrency = "org-concurrency"
	FlagVerbose        = "verbose"
)
