package cmd

// Options holds the shared command-line options for the ghaudit CLI.
type Options struct {
	Format       string
	Verbosity    int
	ForceRefresh bool

	// GitHubURL overrides the GitHub API root (GitHub Enterprise, tests).
	GitHubURL string

	// Serve options
	Addr     string
	JSONLogs bool
}

// Option is a functional option for configuring Options.
type Option func(*Options)

// NewOptions creates a new Options with defaults and applies any provided options.
func NewOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithFormat sets the output format (table, json, markdown).
func WithFormat(format string) Option {
	return func(o *Options) {
		o.Format = format
	}
}

// WithVerbosity sets the verbosity level.
func WithVerbosity(v int) Option {
	return func(o *Options) {
		o.Verbosity = v
	}
}

// WithForceRefresh bypasses the result cache read.
func WithForceRefresh(refresh bool) Option {
	return func(o *Options) {
		o.ForceRefresh = refresh
	}
}

// WithGitHubURL points the GitHub client at a different API root.
func WithGitHubURL(u string) Option {
	return func(o *Options) {
		o.GitHubURL = u
	}
}

// WithAddr sets the server listen address.
func WithAddr(addr string) Option {
	return func(o *Options) {
		o.Addr = addr
	}
}
