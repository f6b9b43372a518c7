package model

import (
	"encoding/json"
	"fmt"
)

// Mode is the terminal analysis outcome of a request.
type Mode string

const (
	ModeFull             Mode = "full"
	ModeGrowth           Mode = "growth"
	ModeInsufficientData Mode = "insufficient_data"
)

// Response is the mode-tagged result of an analysis request. Which fields
// are meaningful depends on Mode; MarshalJSON emits only those.
type Response struct {
	Mode       Mode
	GitHubData ProfileView
	Analysis   *Analysis // full
	LowData    bool      // full
	Roadmap    *Roadmap  // growth, nil when generation failed
	Cached     bool
}

// WithCached returns a shallow copy marked as served from cache.
func (r *Response) WithCached() *Response {
	c := *r
	c.Cached = true
	return &c
}

type fullJSON struct {
	Mode       Mode        `json:"mode"`
	GitHubData ProfileView `json:"githubData"`
	Analysis   *Analysis   `json:"analysis"`
	LowData    bool        `json:"lowData"`
	Cached     bool        `json:"cached,omitempty"`
}

type growthJSON struct {
	Mode       Mode        `json:"mode"`
	GitHubData ProfileView `json:"githubData"`
	Roadmap    *Roadmap    `json:"roadmap"`
	Cached     bool        `json:"cached,omitempty"`
}

type insufficientJSON struct {
	Error      string      `json:"error"`
	GitHubData ProfileView `json:"githubData"`
}

// MarshalJSON renders the response in its mode's wire shape. The
// insufficient-data outcome is error-shaped.
func (r Response) MarshalJSON() ([]byte, error) {
	switch r.Mode {
	case ModeFull:
		return json.Marshal(fullJSON{ModeFull, r.GitHubData, r.Analysis, r.LowData, r.Cached})
	case ModeGrowth:
		return json.Marshal(growthJSON{ModeGrowth, r.GitHubData, r.Roadmap, r.Cached})
	case ModeInsufficientData:
		return json.Marshal(insufficientJSON{string(ModeInsufficientData), r.GitHubData})
	}
	return nil, fmt.Errorf("unknown response mode %q", r.Mode)
}

// UnmarshalJSON accepts any of the mode wire shapes.
func (r *Response) UnmarshalJSON(data []byte) error {
	var probe struct {
		Mode       Mode        `json:"mode"`
		Error      string      `json:"error"`
		GitHubData ProfileView `json:"githubData"`
		Analysis   *Analysis   `json:"analysis"`
		LowData    bool        `json:"lowData"`
		Roadmap    *Roadmap    `json:"roadmap"`
		Cached     bool        `json:"cached"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	mode := probe.Mode
	if mode == "" && probe.Error == string(ModeInsufficientData) {
		mode = ModeInsufficientData
	}
	switch mode {
	case ModeFull, ModeGrowth, ModeInsufficientData:
	default:
		return fmt.Errorf("unknown response mode %q", mode)
	}
	*r = Response{
		Mode:       mode,
		GitHubData: probe.GitHubData,
		Analysis:   probe.Analysis,
		LowData:    probe.LowData,
		Roadmap:    probe.Roadmap,
		Cached:     probe.Cached,
	}
	return nil
}
