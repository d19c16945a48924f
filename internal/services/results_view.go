package services

import (
	"fmt"
	"io"
	"math"
	"strings"

	"alfredoptarigan/resume-screener/internal/models"
)

type ResultsKind string

const (
	ResultsHidden  ResultsKind = "hidden"
	ResultsLoading ResultsKind = "loading"
	ResultsReady   ResultsKind = "ready"
)

type CandidateView struct {
	Name     string `json:"name"`
	Matching bool   `json:"matching"`
}

type ResultsView struct {
	Kind               ResultsKind     `json:"kind"`
	Total              int             `json:"total"`
	RelevantCount      int             `json:"relevant_count"`
	IrrelevantCount    int             `json:"irrelevant_count"`
	RelevantPercentage float64         `json:"relevant_percentage"`
	Relevant           []CandidateView `json:"relevant,omitempty"`
	Irrelevant         []CandidateView `json:"irrelevant,omitempty"`
}

// RenderResults builds the results panel. Loading wins over any result.
func RenderResults(result *models.ScreeningResult, loading bool) ResultsView {
	if loading {
		return ResultsView{Kind: ResultsLoading}
	}
	if result == nil {
		return ResultsView{Kind: ResultsHidden}
	}

	relevant := len(result.Relevant)
	irrelevant := len(result.Irrelevant)

	return ResultsView{
		Kind:               ResultsReady,
		Total:              relevant + irrelevant,
		RelevantCount:      relevant,
		IrrelevantCount:    irrelevant,
		RelevantPercentage: RelevantPercentage(relevant, irrelevant),
		Relevant:           annotate(result.Relevant, true),
		Irrelevant:         annotate(result.Irrelevant, false),
	}
}

// RelevantPercentage is rounded to one decimal place; zero when nothing was screened.
func RelevantPercentage(relevant, irrelevant int) float64 {
	total := relevant + irrelevant
	if total == 0 {
		return 0
	}

	pct := float64(relevant) / float64(total) * 100
	return math.Round(pct*10) / 10
}

func (v ResultsView) MatchRate() string {
	return fmt.Sprintf("%.1f%%", v.RelevantPercentage)
}

func (v ResultsView) WriteText(w io.Writer) error {
	var b strings.Builder

	switch v.Kind {
	case ResultsHidden:
		return nil
	case ResultsLoading:
		b.WriteString("Processing resumes...\n")
	case ResultsReady:
		b.WriteString("Screening Results\n")
		b.WriteString(strings.Repeat("=", 40) + "\n")
		fmt.Fprintf(&b, "Total Resumes:  %d\n", v.Total)
		fmt.Fprintf(&b, "Relevant Match: %d\n", v.RelevantCount)
		fmt.Fprintf(&b, "Match Rate:     %s\n\n", v.MatchRate())

		fmt.Fprintf(&b, "Relevant Resumes (%d)\n", v.RelevantCount)
		if len(v.Relevant) == 0 {
			b.WriteString("  No relevant resumes found\n")
		}
		for _, c := range v.Relevant {
			fmt.Fprintf(&b, "  ✓ %s  (Strong candidate match)\n", c.Name)
		}

		fmt.Fprintf(&b, "\nNon-matching Resumes (%d)\n", v.IrrelevantCount)
		if len(v.Irrelevant) == 0 {
			b.WriteString("  All resumes are relevant!\n")
		}
		for _, c := range v.Irrelevant {
			fmt.Fprintf(&b, "  ✗ %s  (Doesn't match criteria)\n", c.Name)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func annotate(names []string, matching bool) []CandidateView {
	views := make([]CandidateView, 0, len(names))
	for _, name := range names {
		views = append(views, CandidateView{Name: name, Matching: matching})
	}
	return views
}
