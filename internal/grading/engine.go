package grading

import (
	"context"
	"errors"
	"strings"
)

// Q is a minimal view of a question needed for grading.
type Q struct {
	Type          string // "mcq" or "descriptive"
	Marks         int
	CorrectAnswer string // option key "a".."d", MCQ only
}

// Result is the outcome of grading a single question response.
type Result struct {
	AutoMarks   int  // marks awarded automatically
	MaxMarks    int  // the question's mark value
	NeedsManual bool // true if admin review is required
}

// Strategy grades a single question.
type Strategy interface {
	Grade(ctx context.Context, q Q, answer string) (Result, error)
}

// Grader routes by question type to the correct Strategy.
type Grader interface {
	Grade(ctx context.Context, q Q, answer string) (Result, error)
}

type defaultGrader struct {
	strategies map[string]Strategy
}

func (g *defaultGrader) Grade(ctx context.Context, q Q, answer string) (Result, error) {
	s, ok := g.strategies[q.Type]
	if !ok {
		return Result{}, errors.New("unknown question type: " + q.Type)
	}
	return s.Grade(ctx, q, answer)
}

// NewDefaultGrader installs built-in strategies.
func NewDefaultGrader() Grader {
	return &defaultGrader{
		strategies: map[string]Strategy{
			"mcq":         mcqStrategy{},
			"descriptive": descriptiveStrategy{},
		},
	}
}

// --- Strategies ---

type mcqStrategy struct{}

// Full marks on a case-insensitive match against the stored correct option;
// anything else, including an empty answer, scores zero.
func (mcqStrategy) Grade(_ context.Context, q Q, answer string) (Result, error) {
	res := Result{MaxMarks: q.Marks}
	if answer == "" || q.CorrectAnswer == "" {
		return res, nil
	}
	if strings.EqualFold(strings.TrimSpace(answer), q.CorrectAnswer) {
		res.AutoMarks = q.Marks
	}
	return res, nil
}

type descriptiveStrategy struct{}

// No autograde; 0 until manual grading.
func (descriptiveStrategy) Grade(_ context.Context, q Q, _ string) (Result, error) {
	return Result{MaxMarks: q.Marks, NeedsManual: true}, nil
}
