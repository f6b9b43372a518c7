// Package constants provides a centralized location for the limits and
// defaults used throughout ghaudit.
package constants

import "time"

// Profile aggregation limits
const (
	// TopRepoLimit is the number of original repositories kept on a profile.
	TopRepoLimit = 5

	// ForkedRepoLimit is the number of forked repositories kept on a profile.
	ForkedRepoLimit = 10

	// ReadmeRepoLimit is the number of top repositories whose README is fetched.
	ReadmeRepoLimit = 3

	// CommitRepoLimit is the number of top repositories sampled for commits.
	CommitRepoLimit = 5

	// CommitsPerRepo is the number of author-filtered commits requested per repo.
	CommitsPerRepo = 3

	// CommitLimit caps the merged commit list.
	CommitLimit = 10

	// LanguageRepoLimit caps the repositories whose language bytes are merged.
	LanguageRepoLimit = 10

	// PullRequestLimit is the page size of the pull request search.
	PullRequestLimit = 10

	// RepoListPageSize is the page size of the owner repository listing.
	RepoListPageSize = 100

	// PRBodyMaxChars truncates pull request descriptions.
	PRBodyMaxChars = 500

	// ReadmeRawMaxChars truncates decoded README content before compression.
	ReadmeRawMaxChars = 3000

	// ReadmeTruncationMarker is appended when a raw README is cut.
	ReadmeTruncationMarker = "\n\n[... truncated for analysis ...]"

	// ShortSHALength is the length of abbreviated commit hashes.
	ShortSHALength = 7
)

// Repository ranking constants
const (
	// RecencyBoost is added to the star count of recently pushed repositories.
	RecencyBoost = 50

	// RecencyWindow is how recently a repository must have been pushed to
	// receive RecencyBoost.
	RecencyWindow = 180 * 24 * time.Hour
)

// Rate limiting constants
const (
	// RateLimitLowWatermark is the threshold below which rate limit
	// state is logged.
	RateLimitLowWatermark = 100
)

// Payload compression constants
const (
	// ReadmeCompressedChars is the default character budget for a compressed README.
	ReadmeCompressedChars = 800

	// Ellipsis marks a compressed README that was cut.
	Ellipsis = "…"

	// CommitMessageChars caps commit messages in the compact commit list.
	CommitMessageChars = 80

	// RoadmapBodySnippetChars caps pull request bodies quoted in the roadmap prompt.
	RoadmapBodySnippetChars = 120

	// PromptPullRequestLimit caps pull requests quoted in the analysis prompt.
	PromptPullRequestLimit = 5
)

// Inference constants
const (
	// DefaultInferenceURL is the default local inference endpoint.
	DefaultInferenceURL = "http://localhost:8000/api/generate"

	// DefaultInferenceModel is the default model name.
	DefaultInferenceModel = "llama3"

	// DefaultInferenceTimeout bounds a single inference call.
	DefaultInferenceTimeout = 5 * time.Minute

	// DefaultMaxTokens caps the number of generated tokens.
	DefaultMaxTokens = 4000

	// InsufficientDataSentinel is the error value the model returns when it
	// has nothing usable to analyze.
	InsufficientDataSentinel = "insufficient_data"
)

// Result cache constants
const (
	// DefaultCacheCapacity is the maximum number of cached analysis results.
	DefaultCacheCapacity = 100

	// DefaultCacheTTL is how long a cached analysis result stays valid.
	DefaultCacheTTL = time.Hour
)

// Server constants
const (
	// DefaultListenAddr is the default HTTP listen address.
	DefaultListenAddr = ":8080"

	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = 10 * time.Second

	// RequestIDHeader carries the per-request correlation id.
	RequestIDHeader = "X-Request-Id"
)
