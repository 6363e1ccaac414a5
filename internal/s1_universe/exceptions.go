package s1_universe

import "sort"

// Exceptions holds known data-quality exceptions for a universe.
// Skip applies to every stage; Stages lists tickers excluded from one
// stage only (keyed by stage or metric name).
type Exceptions struct {
	skip   map[string]bool
	stages map[string]map[string]bool
}

// NewExceptions builds an immutable exception table
func NewExceptions(skip []string, stages map[string][]string) *Exceptions {
	e := &Exceptions{
		skip:   make(map[string]bool, len(skip)),
		stages: make(map[string]map[string]bool, len(stages)),
	}
	for _, t := range skip {
		e.skip[t] = true
	}
	for stage, tickers := range stages {
		set := make(map[string]bool, len(tickers))
		for _, t := range tickers {
			set[t] = true
		}
		e.stages[stage] = set
	}
	return e
}

// Skips reports whether ticker is excluded from stage
func (e *Exceptions) Skips(stage, ticker string) bool {
	if e == nil {
		return false
	}
	return e.skip[ticker] || e.stages[stage][ticker]
}

// Universe drops globally skipped tickers, keeping the input order
func (e *Exceptions) Universe(tickers []string) []string {
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if e == nil || !e.skip[t] {
			out = append(out, t)
		}
	}
	return out
}

// Stage returns the sorted exceptions of one stage
func (e *Exceptions) Stage(stage string) []string {
	if e == nil {
		return nil
	}
	out := make([]string, 0, len(e.stages[stage]))
	for t := range e.stages[stage] {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
