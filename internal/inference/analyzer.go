package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/spiffcs/ghaudit/internal/apperr"
	"github.com/spiffcs/ghaudit/internal/constants"
	"github.com/spiffcs/ghaudit/internal/log"
	"github.com/spiffcs/ghaudit/internal/model"
)

// Generator produces a completion for a system and user prompt.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

var (
	errNoJSON    = errors.New("no JSON object found in model output")
	errNotObject = errors.New("model output is not a JSON object")
)

// Verdict tells the two kinds of full-analysis outcome apart.
type Verdict int

const (
	// VerdictAnalysis means the model produced an analysis.
	VerdictAnalysis Verdict = iota
	// VerdictInsufficientData means the model found nothing usable to judge.
	VerdictInsufficientData
)

func (v Verdict) String() string {
	if v == VerdictInsufficientData {
		return "insufficient_data"
	}
	return "analysis"
}

// Outcome is the result of a full analysis. Analysis is set only when
// Verdict is VerdictAnalysis.
type Outcome struct {
	Verdict  Verdict
	Analysis *model.Analysis
}

// Analyzer builds prompts from profiles and parses the model's answers.
type Analyzer struct {
	gen         Generator
	readmeChars int
}

// NewAnalyzer creates an Analyzer. READMEs are compressed to readmeChars
// each; a non-positive value uses the compressor default.
func NewAnalyzer(gen Generator, readmeChars int) *Analyzer {
	if readmeChars <= 0 {
		readmeChars = constants.ReadmeCompressedChars
	}
	return &Analyzer{gen: gen, readmeChars: readmeChars}
}

// Analyze runs the full analysis of p.
func (a *Analyzer) Analyze(ctx context.Context, p *model.Profile) (Outcome, error) {
	content, err := a.gen.Generate(ctx, analysisSystemPrompt, BuildAnalysisPrompt(p, a.readmeChars))
	if err != nil {
		return Outcome{}, err
	}
	out, err := parseAnalysis(content)
	if err != nil {
		log.Error("model returned unparseable analysis", "username", p.User.Login, "content", content)
		return Outcome{}, err
	}
	if out.Verdict == VerdictInsufficientData {
		log.Info("model reported insufficient data", "username", p.User.Login)
	}
	return out, nil
}

// Roadmap runs the growth-roadmap analysis of p. The shape of the result
// is not validated beyond decoding.
func (a *Analyzer) Roadmap(ctx context.Context, p *model.Profile) (*model.Roadmap, error) {
	content, err := a.gen.Generate(ctx, roadmapSystemPrompt, BuildRoadmapPrompt(p))
	if err != nil {
		return nil, err
	}
	var r model.Roadmap
	if err := decodeJSON(content, &r); err != nil {
		log.Error("model returned unparseable roadmap", "username", p.User.Login, "content", content)
		return nil, apperr.Wrap(apperr.KindModelInvalidResponse, "AI Service returned invalid JSON for roadmap.", err)
	}
	return &r, nil
}

// parseAnalysis decides between the insufficient-data sentinel and an
// analysis.
func parseAnalysis(content string) (Outcome, error) {
	var probe struct {
		Error string `json:"error"`
	}
	if err := decodeJSON(content, &probe); err != nil {
		return Outcome{}, apperr.Wrap(apperr.KindModelInvalidResponse, "AI Service returned invalid JSON.", err)
	}
	if probe.Error == constants.InsufficientDataSentinel {
		return Outcome{Verdict: VerdictInsufficientData}, nil
	}

	var analysis model.Analysis
	if err := decodeJSON(content, &analysis); err != nil {
		return Outcome{}, apperr.Wrap(apperr.KindModelInvalidResponse, "AI Service returned invalid JSON.", err)
	}
	return Outcome{Verdict: VerdictAnalysis, Analysis: &analysis}, nil
}

// decodeJSON unmarshals the JSON object in content into v, retrying on the
// outermost braces when the model wrapped its JSON in prose or fences.
// Fields whose JSON type does not fit v are left zero; any top-level value
// other than an object is rejected.
func decodeJSON(content string, v any) error {
	raw, err := extractObject(content)
	if err != nil {
		return err
	}
	err = json.Unmarshal(raw, v)
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		log.Debug("ignoring mistyped field in model output", "field", typeErr.Field, "value", typeErr.Value)
		return nil
	}
	return err
}

func extractObject(content string) ([]byte, error) {
	raw := bytes.TrimSpace([]byte(content))
	if !json.Valid(raw) {
		start := strings.Index(content, "{")
		end := strings.LastIndex(content, "}")
		if start < 0 || end <= start {
			return nil, errNoJSON
		}
		raw = []byte(content[start : end+1])
		if !json.Valid(raw) {
			return nil, errNoJSON
		}
	}
	if raw[0] != '{' {
		return nil, errNotObject
	}
	return raw, nil
}
