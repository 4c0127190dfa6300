package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"onlyremote-engine/internal/scrape/util"
)

const (
	MinResumeChars = 200
	MaxResumeChars = 15000
	resumeTokens   = 3000
)

var ErrResumeTooShort = errors.New("resume text is too short or unreadable")

type Issue struct {
	OriginalText string `json:"original_text,omitempty"`
	LocationHint string `json:"location_hint,omitempty"`
	Issue        string `json:"issue"`
	Improvement  string `json:"improvement"`
}

type Section struct {
	Score  float64 `json:"score"`
	Issues []Issue `json:"issues"`
}

type Analysis struct {
	OverallScore     float64 `json:"overall_score"`
	ExecutiveSummary string  `json:"executive_summary"`
	Sections         struct {
		Impact      Section `json:"impact"`
		Terminology Section `json:"terminology"`
		Structure   Section `json:"structure"`
	} `json:"sections"`
	GlobalRecommendations []string `json:"global_recommendations"`
	ExtractedSkills       []string `json:"extracted_skills"`
}

const resumeSystem = "You are a strict ATS resume analyzer. Output valid JSON only. Do not output markdown blocks."

const resumePrompt = `You are an expert, merciless ATS (Applicant Tracking System) resume auditor and career coach.
Analyze the following resume text and provide a detailed report in JSON format.

RESUME TEXT START:
%s
RESUME TEXT END

Goals:
1. Maximize the resume's ATS parseability (logical structure, keywords).
2. Maximize human readability (impact, brevity, active voice).

Analyze on these dimensions:
1. Impact & Quantification: vague bullet points that lack numbers, metrics, or strong action verbs.
2. Technical Terminology: missing hard skills, misused buzzwords, or weak keyword density for the implied role.
3. Logical Structure (content only): essential sections (Experience, Skills) and clear contact info. Do not judge visual layout.

Output ONLY valid JSON matching this schema:
{
  "overall_score": 0,
  "executive_summary": "string (2 sentences on the overall strength)",
  "sections": {
    "impact":      {"score": 0.0, "issues": [{"original_text": "string", "issue": "string", "improvement": "string"}]},
    "terminology": {"score": 0.0, "issues": [{"original_text": "string", "issue": "string", "improvement": "string"}]},
    "structure":   {"score": 0.0, "issues": [{"location_hint": "string", "issue": "string", "improvement": "string"}]}
  },
  "global_recommendations": ["string"],
  "extracted_skills": ["string (top 10-15 hard/soft skills found in the resume)"]
}

Scoring: 0-100 integer scale. Be harsh; 100 means perfect.

For 'original_text': quote the resume EXACTLY as it appears so it can be highlighted. If it is long, quote the first 10 words ... last 10 words. Leave it empty for a missing skill.
For 'improvement': give the rewrite, not a complaint. Bad: "Add metrics." Good: "Rewrite as: 'Reduced server costs by 20%% ($5k/mo) by optimizing AWS EC2 instances.'"
`

var fenceRe = regexp.MustCompile("```(?:json)?\\n?")

// ParseAnalysis pulls the JSON object out of a model reply, tolerating code
// fences and chatter around it, and clamps the score to 0..100.
func ParseAnalysis(content string) (Analysis, error) {
	s := strings.TrimSpace(fenceRe.ReplaceAllString(content, ""))
	open, end := strings.Index(s, "{"), strings.LastIndex(s, "}")
	if open == -1 || end <= open {
		return Analysis{}, errors.New("reply contains no JSON object")
	}

	var a Analysis
	if err := json.Unmarshal([]byte(s[open:end+1]), &a); err != nil {
		return Analysis{}, fmt.Errorf("decode analysis: %w", err)
	}
	a.OverallScore = max(0, min(100, a.OverallScore))
	if a.ExtractedSkills == nil {
		a.ExtractedSkills = []string{}
	}
	if a.GlobalRecommendations == nil {
		a.GlobalRecommendations = []string{}
	}
	return a, nil
}

// PrepareResume normalizes whitespace and enforces the length bounds.
func PrepareResume(text string) (string, error) {
	text = util.CleanText(text)
	if len([]rune(text)) < MinResumeChars {
		return "", ErrResumeTooShort
	}
	if r := []rune(text); len(r) > MaxResumeChars {
		text = string(r[:MaxResumeChars])
	}
	return text, nil
}

func (s *Service) AnalyzeResume(ctx context.Context, text string) (Analysis, error) {
	if !s.Ready() {
		return Analysis{}, ErrNotConfigured
	}
	text, err := PrepareResume(text)
	if err != nil {
		return Analysis{}, err
	}

	var out Analysis
	err = s.firstSuccess(ctx, "resume_analysis", s.resumeModels, func(model string) error {
		reply, err := s.complete(ctx, Prompt{
			Model:     model,
			System:    resumeSystem,
			User:      fmt.Sprintf(resumePrompt, text),
			JSON:      true,
			MaxTokens: resumeTokens,
		})
		if err != nil {
			return err
		}
		out, err = ParseAnalysis(reply)
		return err
	})
	return out, err
}
