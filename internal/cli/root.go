package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	gh "ghmirror/internal/github"
	"ghmirror/internal/mirror"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

// Exit codes.
const (
	ExitOK          = 0
	ExitFatal       = 1
	ExitInterrupted = 130
)

// deps carries the process boundary so commands can be exercised in-process.
type deps struct {
	stdout io.Writer
	stderr io.Writer

	// runner overrides the git runner; nil means a real ExecRunner.
	runner mirror.Runner

	resolveToken func(ctx context.Context, provided, host string) (string, gh.AuthTokenSource, error)
}

func defaultDeps() deps {
	return deps{
		stdout:       os.Stdout,
		stderr:       os.Stderr,
		resolveToken: gh.ResolveAuthToken,
	}
}

func newRootCmd(d deps) *cobra.Command {
	root := &cobra.Command{
		Use:   "ghmirror",
		Short: "Clone and update every GitHub repository you can access",
		Long: `ghmirror keeps a local mirror of every repository the authenticated GitHub
user can reach: personal, collaborator and organization repositories.

Missing repositories are cloned over SSH; existing checkouts are fetched and
fast-forwarded. Local changes are never merged or overwritten.

Examples:
	# Mirror everything into ~/code-blacksite
	ghmirror sync

	# Namespace mirrors by owner and show what would happen
	ghmirror sync --layout owner --dry-run

	# Print build info
	ghmirror version`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(d.stdout)
	root.SetErr(d.stderr)
	root.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	root.SetVersionTemplate("{{.Version}}\n")

	root.AddCommand(newSyncCmd(d))
	root.AddCommand(newVersionCmd())
	return root
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], defaultDeps())
	stop()
	os.Exit(code)
}

// run executes the command tree and maps the outcome to an exit code.
// Per-repository sync failures are not fatal and still exit 0.
func run(ctx context.Context, args []string, d deps) int {
	root := newRootCmd(d)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled) || ctx.Err() != nil:
		fmt.Fprintln(d.stderr, "\nInterrupted by user.")
		return ExitInterrupted
	default:
		fmt.Fprintf(d.stderr, "Error: %v\n", err)
		return ExitFatal
	}
}
