package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spiffcs/ghaudit/internal/apperr"
	"github.com/spiffcs/ghaudit/internal/output"
	"github.com/spiffcs/ghaudit/internal/service"
)

// NewCmdAnalyze creates the analyze command.
func NewCmdAnalyze(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <username|profile-url>",
		Short: "Analyze a GitHub profile",
		Long: `Fetches a user's public GitHub data, asks the configured model for a
review and prints the result.

Users with pull requests but no original repositories get a growth
roadmap instead of a scored review.`,
		Example: `  ghaudit analyze octocat
  ghaudit analyze https://github.com/octocat -o markdown > report.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "output", "o", "", "Output format (table, json, markdown)")
	cmd.Flags().BoolVar(&opts.ForceRefresh, "refresh", false, "Ignore cached results")
	return cmd
}

func runAnalyze(cmd *cobra.Command, input string, opts *Options) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, settings, err := loadSettings()
	if err != nil {
		return err
	}

	format, err := resolveFormat(opts.Format, settings.DefaultFormat)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, settings, opts)
	if err != nil {
		return err
	}

	p := newProgress(os.Stderr)
	resp, err := a.service.Analyze(ctx, service.Request{Username: input, ForceRefresh: opts.ForceRefresh}, p)
	p.Done()
	if err != nil {
		return describeError(err)
	}

	return output.NewFormatter(format).Format(resp, cmd.OutOrStdout())
}

func resolveFormat(flag, configured string) (output.Format, error) {
	f := output.Format(flag)
	if f == "" {
		f = output.Format(configured)
	}
	if f == "" {
		return output.FormatTable, nil
	}
	if !f.Valid() {
		return "", fmt.Errorf("invalid format: %s (must be table, json or markdown)", f)
	}
	return f, nil
}

// describeError turns a service failure into a message for the operator.
// Unlike the HTTP surface, the CLI shows the underlying cause.
func describeError(err error) error {
	switch apperr.KindOf(err) {
	case apperr.KindCanceled:
		return fmt.Errorf("canceled")
	case apperr.KindRateLimited:
		msg := "GitHub API rate limit exceeded"
		if e := apperr.As(err); !e.ResetAt.IsZero() {
			msg += fmt.Sprintf(", resets at %s", e.ResetAt.Local().Format(time.Kitchen))
		}
		return fmt.Errorf("%s. Set GITHUB_TOKEN for a higher quota", msg)
	}
	return err
}
