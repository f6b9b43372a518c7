package model

// Priority of an action item.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ActionCategory groups action items.
type ActionCategory string

const (
	CategoryProfile       ActionCategory = "profile"
	CategoryRepository    ActionCategory = "repository"
	CategoryDocumentation ActionCategory = "documentation"
	CategoryCommunity     ActionCategory = "community"
)

// Confidence classifies proficiency in a language.
type Confidence string

const (
	ConfidenceExpert     Confidence = "expert"
	ConfidenceProficient Confidence = "proficient"
	ConfidenceFamiliar   Confidence = "familiar"
	ConfidenceBeginner   Confidence = "beginner"
)

// ScoreBreakdown holds the five 0-100 scoring dimensions.
type ScoreBreakdown struct {
	Professionalism     Number `json:"professionalism"`
	Documentation       Number `json:"documentation"`
	TechnicalBreadth    Number `json:"technicalBreadth"`
	CommunityEngagement Number `json:"communityEngagement"`
	CodeQuality         Number `json:"codeQuality"`
}

// ReadmeCritique is the model's review of a single README.
type ReadmeCritique struct {
	RepoName     string  `json:"repoName"`
	Score        Number  `json:"score"`
	Strengths    Strings `json:"strengths"`
	Improvements Strings `json:"improvements"`
}

// ActionItem is a prioritized recommendation.
type ActionItem struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Priority    Priority       `json:"priority"`
	Category    ActionCategory `json:"category"`
}

// LanguageConfidence classifies the subject's proficiency in a language.
type LanguageConfidence struct {
	Language   string     `json:"language"`
	Percentage Number     `json:"percentage"`
	Confidence Confidence `json:"confidence"`
}

// PortfolioHealth splits repositories by hiring impact.
type PortfolioHealth struct {
	HighImpact Strings `json:"highImpact"`
	Clutter    Strings `json:"clutter"`
}

// ProjectEnhancement lists technical suggestions for one repository.
type ProjectEnhancement struct {
	RepoName    string  `json:"repoName"`
	Suggestions Strings `json:"suggestions"`
}

// RoadmapStep is one numbered milestone.
type RoadmapStep struct {
	Step        Number `json:"step"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// HiringInsights is the recruiter-facing bundle of an analysis.
type HiringInsights struct {
	Headline            string               `json:"headline"`
	PortfolioHealth     PortfolioHealth      `json:"portfolioHealth"`
	ProjectEnhancements []ProjectEnhancement `json:"projectEnhancements"`
	Roadmap             []RoadmapStep        `json:"roadmap"`
}

// Analysis is the model's structured judgment of a profile.
type Analysis struct {
	ProfileScore       Number               `json:"profileScore"`
	ScoreBreakdown     ScoreBreakdown       `json:"scoreBreakdown"`
	CurrentBio         string               `json:"currentBio"`
	SuggestedBio       string               `json:"suggestedBio"`
	ReadmeCritiques    []ReadmeCritique     `json:"readmeCritiques"`
	SuggestedSkills    Strings              `json:"suggestedSkills"`
	ActionItems        []ActionItem         `json:"actionItems"`
	LanguageConfidence []LanguageConfidence `json:"languageConfidence"`
	TopImprovements    Strings              `json:"topImprovements"`
	Summary            string               `json:"summary"`
	ContributionScore  Number               `json:"contributionScore,omitempty"`
	HiringInsights     HiringInsights       `json:"hiringInsights"`
}

// ExpertiseArea is one area demonstrated by contribution history.
type ExpertiseArea struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ProjectIdea is a concrete project suggestion.
type ProjectIdea struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	TechStack   Strings `json:"techStack"`
}

// Roadmap is the growth-mode judgment for subjects with pull requests but
// no original repositories.
type Roadmap struct {
	ExpertiseAreas []ExpertiseArea `json:"expertiseAreas"`
	ProjectIdea    ProjectIdea     `json:"projectIdea"`
}
