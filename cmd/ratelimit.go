package cmd

import (
	"fmt"
	"io"
	"time"

	gh "github.com/google/go-github/v60/github"
	"github.com/spf13/cobra"
)

// NewCmdRateLimit creates the ratelimit command.
func NewCmdRateLimit(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratelimit",
		Short: "Check GitHub API rate limit status",
		Long:  `Display current GitHub API rate limit status including remaining quota and reset time.`,
	}
	cmd.AddCommand(NewCmdRateLimitStatus(opts))
	return cmd
}

// NewCmdRateLimitStatus creates the ratelimit status subcommand.
func NewCmdRateLimitStatus(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show current rate limit status",
		Long:  `Display the current GitHub API rate limit status for the core and search APIs.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRateLimitStatus(cmd, opts)
		},
	}
}

func runRateLimitStatus(cmd *cobra.Command, opts *Options) error {
	ctx := cmd.Context()

	_, settings, err := loadSettings()
	if err != nil {
		return err
	}

	client, err := newGitHubClient(ctx, settings, opts)
	if err != nil {
		return err
	}

	limits, err := client.RateLimits(ctx)
	if err != nil {
		return describeError(err)
	}

	out := cmd.OutOrStdout()
	auth := "authenticated"
	if settings.GitHubToken == "" {
		auth = "unauthenticated"
	}
	fmt.Fprintf(out, "GitHub API Rate Limits (%s):\n\n", auth)
	printRate(out, "Core API:  ", limits.Core, time.Now())
	printRate(out, "Search API:", limits.Search, time.Now())
	return nil
}

func printRate(w io.Writer, label string, r *gh.Rate, now time.Time) {
	if r == nil {
		return
	}
	resetIn := r.Reset.Sub(now)
	if resetIn < 0 {
		resetIn = 0
	}
	fmt.Fprintf(w, "%s %d/%d remaining (resets in %s)\n", label, r.Remaining, r.Limit, resetIn.Round(time.Second))
}
