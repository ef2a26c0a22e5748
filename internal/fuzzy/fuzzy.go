// Package fuzzy ranks tasks against a free-text query using edit distance.
package fuzzy

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/sandeepkv93/lazytask/internal/model"
)

const DefaultThreshold = 0.7

const (
	FieldDescription = "description"
	FieldDetails     = "details"
	FieldTags        = "tags"
)

type FieldWeights struct {
	Description float64
	Details     float64
	Tags        float64
}

type Options struct {
	Threshold float64
	Weights   FieldWeights
}

func DefaultOptions() Options {
	return Options{
		Threshold: DefaultThreshold,
		Weights:   FieldWeights{Description: 1.0, Details: 0.8, Tags: 0.6},
	}
}

type Match struct {
	Field      string
	Text       string
	Similarity float64
}

type Result struct {
	Task    model.Task
	Score   float64
	Matches []Match
}

// Search returns the tasks with at least one field at or above the
// threshold, best score first. Equal scores keep input order.
func Search(tasks []model.Task, query string, opts Options) []Result {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.Weights == (FieldWeights{}) {
		opts.Weights = DefaultOptions().Weights
	}
	results := make([]Result, 0, len(tasks))
	for _, task := range tasks {
		res := Result{Task: task}
		consider := func(field, text string, weight float64) {
			sim := Similarity(query, text)
			if sim < opts.Threshold {
				return
			}
			res.Score += sim * weight
			res.Matches = append(res.Matches, Match{Field: field, Text: text, Similarity: sim})
		}
		consider(FieldDescription, task.Description, opts.Weights.Description)
		consider(FieldDetails, task.Details, opts.Weights.Details)
		for _, tag := range task.Tags {
			consider(FieldTags, tag, opts.Weights.Tags)
		}
		if len(res.Matches) > 0 && res.Score > 0 {
			results = append(results, res)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// Tasks is Search without the scoring detail.
func Tasks(tasks []model.Task, query string, opts Options) []model.Task {
	results := Search(tasks, query, opts)
	out := make([]model.Task, 0, len(results))
	for _, r := range results {
		out = append(out, r.Task)
	}
	return out
}

// MatchesFuzzy reports whether any searchable field of task clears threshold.
func MatchesFuzzy(task model.Task, query string, threshold float64) bool {
	if Similarity(query, task.Description) >= threshold {
		return true
	}
	if Similarity(query, task.Details) >= threshold {
		return true
	}
	for _, tag := range task.Tags {
		if Similarity(query, tag) >= threshold {
			return true
		}
	}
	return false
}

// Similarity is 1 when text contains query (case-insensitive), otherwise the
// best 1-distance/len(query) over every window of text as long as query.
func Similarity(query, text string) float64 {
	if query == "" || text == "" {
		return 0
	}
	q := []rune(strings.ToLower(query))
	t := []rune(strings.ToLower(text))
	if strings.Contains(string(t), string(q)) {
		return 1
	}
	if len(t) < len(q) {
		return 0
	}
	best := 0.0
	for i := 0; i+len(q) <= len(t); i++ {
		sim := 1 - float64(levenshtein.ComputeDistance(string(q), string(t[i:i+len(q)])))/float64(len(q))
		if sim > best {
			best = sim
		}
	}
	return best
}

// Distance is the Levenshtein distance between a and b, counted in runes.
func Distance(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}
