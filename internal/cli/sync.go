package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"ghmirror/internal/config"
	"ghmirror/internal/discovery"
	"ghmirror/internal/flags"
	gh "ghmirror/internal/github"
	"ghmirror/internal/mirror"
	"ghmirror/internal/output"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

const syncHelpTemplate = `{{with (or .Long .Short)}}{{. | trimTrailingWhitespaces}}

{{end}}Usage:
  {{.UseLine}}

{{if .HasAvailableLocalFlags}}Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableInheritedFlags}}Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}Environment:
  ghmirror authenticates to GitHub using an access token.

  Sources (in order):
  1) --token flag
  2) GITHUB_TOKEN environment variable
  3) GitHub CLI (gh) authentication via gh auth token (if gh is installed and logged in)

  Token guidance (brief):
  - PAT (classic): needs repo (to see private repos) and read:org
    (to enumerate organization repositories).

  Cloning uses SSH URLs, so git must be able to authenticate to the host
  with your SSH key. Git is never allowed to prompt for credentials.

{{if .HasAvailableSubCommands}}Available Commands:
{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.
{{end}}`

func newSyncCmd(d deps) *cobra.Command {
	cfg := config.New()

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Clone missing repositories and fast-forward existing mirrors",
		Long: `Enumerate every repository the authenticated user can access and bring the
local mirror up to date.

For each repository, an existing checkout is updated with
"git fetch --all --prune" followed by "git pull --ff-only"; anything else is
cloned over SSH. Up to --concurrency repositories are processed at once.

Layout:
	flat  (default) <target>/<name>. Two owners with the same repository name
	      share one path; only the first one listed is synced and the others
	      are reported as errors.
	owner           <target>/<owner>/<name>.

Output:
	The console prints one line per repository as it completes, then a summary.
	Structured outputs can be written via:
	- --out / --out-format: write an aggregate JSON array or NDJSON stream to a file
	- --emit: write an additional structured stream to stdout (json or ndjson)
	- --no-console: suppress the console sink (use with --emit/--out for machine output)

	NDJSON mode emits one JSON object per line. Objects are lifecycle Events with a
	"type" field (run.started, run.warning, repo.planned, repo.synced, run.finished).

Exit codes:
	0   = run completed (individual repositories may still have failed; see the summary)
	1   = fatal error (authentication, enumeration, invalid flags)
	130 = interrupted

Examples:
	export GITHUB_TOKEN="<your_token>"
	ghmirror sync --target ~/mirrors --concurrency 16

	# Machine-readable results only
	ghmirror sync --no-console --emit ndjson
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runSync(cmd.Context(), *cfg, d)
		},
	}
	cmd.SetHelpTemplate(syncHelpTemplate)

	// MAINTAINER NOTE: keep these in sync with internal/config.Config.

	// Auth
	cmd.Flags().StringVar(&cfg.Auth.Token, flags.FlagToken, "", "GitHub access token (default: GITHUB_TOKEN, then gh auth token)")
	cmd.Flags().StringVar(&cfg.Auth.APIURL, flags.FlagAPIURL, "", "GitHub Enterprise Server API base URL, e.g. https://ghe.example.com/api/v3 (default: github.com)")

	// Mirror
	cmd.Flags().StringVar(&cfg.Mirror.TargetDir, flags.FlagTarget, config.DefaultTargetDir, "Directory to keep mirrors in")
	cmd.Flags().StringVar(&cfg.Mirror.Layout, flags.FlagLayout, config.DefaultLayout, "Local path layout: flat|owner")
	cmd.Flags().BoolVar(&cfg.Mirror.DryRun, flags.FlagDryRun, false, "Enumerate and print the plan without running git")

	// Output
	cmd.Flags().BoolVar(&cfg.Output.NoColor, flags.FlagNoColor, false, "Disable colored console output")
	cmd.Flags().BoolVar(&cfg.Output.NoConsole, flags.FlagNoConsole, false, "Suppress console output (use with --emit/--out)")
	cmd.Flags().StringVar(&cfg.Output.Out, flags.FlagOut, "", "Write structured output to this path")
	cmd.Flags().StringVar(&cfg.Output.OutFormat, flags.FlagOutFormat, "", "Structured output format for --out: json|ndjson (default: inferred from file extension)")
	cmd.Flags().StringSliceVar(&cfg.Output.Emit, flags.FlagEmit, nil, "Emit additional structured stream to stdout: json|ndjson (repeatable; comma-separated accepted)")

	// Runtime
	cmd.Flags().IntVar(&cfg.Runtime.Concurrency, flags.FlagConcurrency, config.DefaultConcurrency, "Maximum concurrent clone/update operations")
	cmd.Flags().IntVar(&cfg.Runtime.OrgConcurrency, flags.FlagOrgConcurrency, config.DefaultOrgConcurrency, "Maximum organizations enumerated at once")
	cmd.Flags().BoolVarP(&cfg.Runtime.Verbose, flags.FlagVerbose, "v", false, "Print every GitHub API call and git invocation to stderr")

	return cmd
}

func runSync(ctx context.Context, cfg config.Config, d deps) (err error) {
	var verboseLog io.Writer
	if cfg.Runtime.Verbose {
		verboseLog = d.stderr
	}

	host := gh.HostFromAPIURL(cfg.Auth.APIURL)
	token, source, err := d.resolveToken(ctx, cfg.Auth.Token, host)
	if err != nil {
		return errors.Wrap(err, "failed to resolve GitHub auth token")
	}
	if token == "" {
		return errors.New("GitHub auth token is required (pass --token, set GITHUB_TOKEN or run 'gh auth login')")
	}
	if verboseLog != nil {
		fmt.Fprintf(verboseLog, "[verbose] auth token from %s\n", source)
	}

	client, err := gh.NewClient(ctx, token,
		gh.WithVerbose(cfg.Runtime.Verbose, d.stderr),
		gh.WithAPIURL(cfg.Auth.APIURL),
	)
	if err != nil {
		return errors.Wrap(err, "failed to create GitHub client")
	}

	outMgr, err := setupOutputManager(cfg, d.stdout)
	if err != nil {
		return errors.Wrap(err, "failed to create output sinks")
	}
	defer func() {
		if cerr := outMgr.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	emit := func(e output.Event) {
		if werr := outMgr.Write(e); werr != nil {
			fmt.Fprintf(d.stderr, "Error writing output: %v\n", werr)
		}
	}

	target := cfg.Mirror.TargetDir
	if !cfg.Mirror.DryRun {
		if err := os.MkdirAll(target, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create target directory %s", target)
		}
	}

	enumOpts := []discovery.Option{discovery.WithOrgConcurrency(cfg.Runtime.OrgConcurrency)}
	if verboseLog != nil {
		enumOpts = append(enumOpts, discovery.WithLog(verboseLog))
	}
	enumerator, err := discovery.NewEnumerator(client, enumOpts...)
	if err != nil {
		return err
	}

	fmt.Fprintln(d.stderr, "Fetching all accessible repositories...")
	inv, err := enumerator.Enumerate(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.Wrap(err, "failed to enumerate repositories")
	}

	emit(output.RunStarted(inv, target))
	if len(inv.Repositories) == 0 {
		emit(output.RunFinished(mirror.Summary{}, target))
		return nil
	}

	layout, err := mirror.ParseLayout(cfg.Mirror.Layout)
	if err != nil {
		return err
	}
	for _, msg := range collisionWarnings(layout, target, inv.Repositories) {
		emit(output.Warning(msg))
	}

	runner := d.runner
	if runner == nil {
		runner = &mirror.ExecRunner{Log: verboseLog}
	}
	engine, err := mirror.NewEngine(mirror.Options{
		TargetDir:   target,
		Concurrency: cfg.Runtime.Concurrency,
		Layout:      layout,
		Runner:      runner,
		OnResult: func(r mirror.Result) {
			emit(output.RepoSynced(r))
		},
	})
	if err != nil {
		return err
	}

	if cfg.Mirror.DryRun {
		for _, p := range engine.Plan(inv.Repositories) {
			emit(output.RepoPlanned(p))
		}
		return nil
	}

	results := engine.SyncAll(ctx, inv.Repositories)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	emit(output.RunFinished(mirror.Summarize(results), target))
	return nil
}

func setupOutputManager(cfg config.Config, stdout io.Writer) (*output.Manager, error) {
	outMgr := output.NewManager()

	if !cfg.Output.NoConsole {
		if err := outMgr.AddSink(output.NewConsoleSink(stdout, cfg.Output.NoColor)); err != nil {
			return nil, err
		}
	}

	for _, format := range cfg.Output.Emit {
		es, err := output.NewEmitSink(stdout, format)
		if err != nil {
			return nil, err
		}
		if err := outMgr.AddSink(es); err != nil {
			return nil, err
		}
	}

	if cfg.Output.Out != "" {
		fs, err := output.NewFileSink(cfg.Output.Out, cfg.Output.OutFormat)
		if err != nil {
			return nil, err
		}
		if err := outMgr.AddSink(fs); err != nil {
			return nil, err
		}
	}

	return outMgr, nil
}

func collisionWarnings(layout mirror.Layout, target string, repos []discovery.Repository) []string {
	if layout != mirror.LayoutFlat {
		return nil
	}
	collisions := mirror.Collisions(layout, target, repos)
	paths := make([]string, 0, len(collisions))
	for p := range collisions {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	msgs := make([]string, 0, len(paths))
	for _, p := range paths {
		names := collisions[p]
		msgs = append(msgs, fmt.Sprintf("%s is claimed by %s; only %s will be synced (use --layout owner)",
			p, strings.Join(names, ", "), names[0]))
	}
	return msgs
}
