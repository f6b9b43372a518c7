package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spiffcs/ghaudit/internal/log"
)

// New creates the root command with all subcommands registered.
func New() *cobra.Command {
	opts := NewOptions()

	rootCmd := &cobra.Command{
		Use:   "ghaudit",
		Short: "AI review of a GitHub profile",
		Long: `A CLI and HTTP service that collects a GitHub user's public profile,
repositories, READMEs, commits and pull requests, and asks a language
model for a recruiter-style review with a score and action items.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			log.Initialize(opts.Verbosity, os.Stderr)
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug, -vvv trace)")
	rootCmd.PersistentFlags().StringVar(&opts.GitHubURL, "github-url", "", "GitHub API base URL (default: public GitHub)")

	// Register subcommands
	rootCmd.AddCommand(NewCmdAnalyze(opts))
	rootCmd.AddCommand(NewCmdServe(opts))
	rootCmd.AddCommand(NewCmdConfig())
	rootCmd.AddCommand(NewCmdRateLimit(opts))
	rootCmd.AddCommand(NewCmdVersion())

	return rootCmd
}
