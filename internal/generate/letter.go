package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrMissingFields = errors.New("job title and company are required")

type LetterRequest struct {
	JobTitle       string `json:"jobTitle"`
	CompanyName    string `json:"companyName"`
	JobDescription string `json:"jobDescription"`
	UserName       string `json:"userName"`
	// Background is optional candidate context (experience, skills) the
	// letter should draw on.
	Background string `json:"background"`
}

func (r LetterRequest) Validate() error {
	if strings.TrimSpace(r.JobTitle) == "" || strings.TrimSpace(r.CompanyName) == "" {
		return ErrMissingFields
	}
	return nil
}

const letterSystem = "You are an expert career coach and professional copywriter."

func letterPrompt(r LetterRequest) string {
	name := strings.TrimSpace(r.UserName)
	if name == "" {
		name = "[Your Name]"
	}

	var b strings.Builder
	b.WriteString("Write a professional and persuasive cover letter for the following job application:\n\n")
	fmt.Fprintf(&b, "CANDIDATE NAME: %s\n", name)
	if bg := strings.TrimSpace(r.Background); bg != "" {
		fmt.Fprintf(&b, "CANDIDATE BACKGROUND:\n%s\n", bg)
	}
	fmt.Fprintf(&b, "\nJOB DETAILS:\nJob Title: %s\nCompany: %s\nJob Description Snippet: %q\n\n",
		r.JobTitle, r.CompanyName, r.JobDescription)

	b.WriteString("The cover letter should:\n")
	b.WriteString("1. Be addressed to the Hiring Manager.\n")
	b.WriteString("2. Express enthusiasm for the role and company.\n")
	b.WriteString("3. Highlight relevant skills based on the job title and description.\n")
	if strings.TrimSpace(r.Background) != "" {
		b.WriteString("   You MUST mention 2-3 specific experiences or skills from the CANDIDATE BACKGROUND that match the JOB DETAILS.\n")
	}
	b.WriteString("4. Be concise (under 400 words).\n")
	b.WriteString("5. Use a professional tone.\n")
	b.WriteString("6. Include placeholders like [Your Email] only if necessary.\n\n")
	b.WriteString("Output ONLY the body of the letter. No \"Subject:\" line and no markdown formatting.\n")
	return b.String()
}

func (s *Service) CoverLetter(ctx context.Context, r LetterRequest) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	if !s.Ready() {
		return "", ErrNotConfigured
	}
	var out string
	err := s.firstSuccess(ctx, "cover_letter", s.letterModels, func(model string) error {
		reply, err := s.complete(ctx, Prompt{Model: model, System: letterSystem, User: letterPrompt(r)})
		if err != nil {
			return err
		}
		out = strings.TrimSpace(reply)
		return nil
	})
	return out, err
}
