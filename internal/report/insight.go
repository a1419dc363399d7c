package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/seatutor/internal/llm"
)

// InsightPurpose tags insight requests in the LLM request log.
const InsightPurpose = "report-insight"

const insightSystemPrompt = `You are an experienced Trinidad and Tobago primary school mathematics teacher reviewing practice data for the Secondary Entrance Assessment (SEA). Strands are Number, Measurement, Geometry and Statistics. Write plainly for a busy class teacher. Base every point on the numbers given; do not invent students or results.`

// Insight is an LLM-written reading of a report.
type Insight struct {
	Summary     string
	Strengths   []string
	FocusAreas  []string
	Suggestions []string
	GeneratedAt time.Time
}

// InsightConfig controls insight generation.
type InsightConfig struct {
	MaxTokens   int
	Temperature float64
}

// DefaultInsightConfig returns sensible defaults.
func DefaultInsightConfig() InsightConfig {
	return InsightConfig{MaxTokens: 800, Temperature: 0.3}
}

// InsightGenerator asks the LLM to interpret report views.
type InsightGenerator struct {
	provider llm.Provider
	cfg      InsightConfig
}

// NewInsightGenerator creates an InsightGenerator.
func NewInsightGenerator(provider llm.Provider, cfg InsightConfig) *InsightGenerator {
	return &InsightGenerator{provider: provider, cfg: cfg}
}

type insightOutput struct {
	Summary     string   `json:"summary"`
	Strengths   []string `json:"strengths"`
	FocusAreas  []string `json:"focus_areas"`
	Suggestions []string `json:"suggestions"`
}

// ClassInsight interprets the class overview and analytics.
func (g *InsightGenerator) ClassInsight(ctx context.Context, o *Overview, a *Analytics) (*Insight, error) {
	return g.generate(ctx, buildClassInsightMessage(o, a))
}

// StudentInsight interprets one student's detail report.
func (g *InsightGenerator) StudentInsight(ctx context.Context, d *StudentDetail) (*Insight, error) {
	return g.generate(ctx, buildStudentInsightMessage(d))
}

func (g *InsightGenerator) generate(ctx context.Context, userMsg string) (*Insight, error) {
	ctx = llm.WithPurpose(ctx, InsightPurpose)

	req := llm.Request{
		System: insightSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: userMsg},
		},
		Schema:      InsightSchema,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("insight generation: %w", err)
	}

	var out insightOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse insight response: %w", err)
	}

	return &Insight{
		Summary:     out.Summary,
		Strengths:   out.Strengths,
		FocusAreas:  out.FocusAreas,
		Suggestions: out.Suggestions,
		GeneratedAt: time.Now(),
	}, nil
}

func buildClassInsightMessage(o *Overview, a *Analytics) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Class: %d students, %d active today, %d questions answered, average accuracy %.1f%%.\n",
		o.TotalStudents, o.ActiveToday, o.TotalQuestions, o.AverageAccuracy)

	if a != nil && len(a.Strands) > 0 {
		b.WriteString("\nBy strand:\n")
		for _, s := range a.Strands {
			fmt.Fprintf(&b, "- %s: %d questions, %.1f%% correct\n", s.Strand, s.Total, s.Accuracy)
		}
	}

	if len(o.Students) > 0 {
		b.WriteString("\nStudents (questions, accuracy):\n")
		for _, s := range o.Students {
			fmt.Fprintf(&b, "- %s: %d, %.1f%%\n", s.Name, s.Questions, s.Accuracy)
		}
	}

	b.WriteString("\nSummarise how the class is doing and what to work on next.")
	return b.String()
}

func buildStudentInsightMessage(d *StudentDetail) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Student: %s\n", d.Student.Name)
	fmt.Fprintf(&b, "Questions: %d, correct: %d (%.1f%%), best streak: %d, sessions: %d, badges: %d\n",
		d.Student.TotalQuestions, d.Student.CorrectAnswers, d.Accuracy,
		d.Student.BestStreak, d.Student.Sessions, len(d.Badges))

	if len(d.Strands) > 0 {
		b.WriteString("\nBy strand:\n")
		for _, s := range d.Strands {
			fmt.Fprintf(&b, "- %s: %d of %d correct (%.1f%%)\n", s.Strand, s.Correct, s.Total, s.Accuracy)
		}
	}

	if len(d.Recent) > 0 {
		b.WriteString("\nMost recent answers (newest first):\n")
		for _, r := range d.Recent {
			mark := "wrong"
			if r.Correct {
				mark = "right"
			}
			fmt.Fprintf(&b, "- %s %s, %.0fs\n", r.Strand, mark, r.ElapsedSeconds)
		}
	}

	b.WriteString("\nSummarise this student's progress for their teacher and suggest next steps.")
	return b.String()
}
