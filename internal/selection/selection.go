// Package selection parses task ID expressions such as "1,3,5-7" and checks
// them against a task list.
package selection

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sandeepkv93/lazytask/internal/model"
)

var ErrInvalidExpression = errors.New("selection: invalid id expression")

// MaxRangeSpan bounds how many IDs a single lo-hi range may expand to.
const MaxRangeSpan = 10000

// ParseIDExpression returns the ascending, deduplicated IDs named by input.
// Empty input yields an empty list and no error.
func ParseIDExpression(input string) ([]int, error) {
	ids := []int{}
	if strings.TrimSpace(input) == "" {
		return ids, nil
	}

	seen := map[int]bool{}
	add := func(id int) {
		if seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	}

	for _, token := range strings.Split(input, ",") {
		token = strings.TrimSpace(token)
		if start, end, ok := strings.Cut(token, "-"); ok {
			lo, errLo := parseID(start)
			hi, errHi := parseID(end)
			if errLo != nil || errHi != nil || lo > hi {
				return nil, fmt.Errorf("%w: invalid range: %s", ErrInvalidExpression, token)
			}
			if hi-lo >= MaxRangeSpan {
				return nil, fmt.Errorf("%w: range too large: %s", ErrInvalidExpression, token)
			}
			for id := lo; id <= hi; id++ {
				add(id)
			}
			continue
		}
		id, err := parseID(token)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid ID: %s", ErrInvalidExpression, token)
		}
		add(id)
	}

	sort.Ints(ids)
	return ids, nil
}

func parseID(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errors.New("empty id")
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("not a number: %q", raw)
		}
	}
	return strconv.Atoi(raw)
}

type Validation struct {
	Valid   []int
	Invalid []int
}

// ValidateIDs partitions ids by presence in tasks, preserving input order.
func ValidateIDs(ids []int, tasks []model.Task) Validation {
	known := make(map[int]bool, len(tasks))
	for _, t := range tasks {
		known[t.ID] = true
	}
	out := Validation{Valid: []int{}, Invalid: []int{}}
	for _, id := range ids {
		if known[id] {
			out.Valid = append(out.Valid, id)
		} else {
			out.Invalid = append(out.Invalid, id)
		}
	}
	return out
}

type Prepared struct {
	IDs    []int
	Errors []string
}

func (p Prepared) OK() bool {
	return len(p.Errors) == 0
}

// PrepareBulkOperation parses and validates input. Problems are reported in
// Errors; whatever valid IDs remain are still returned.
func PrepareBulkOperation(input string, tasks []model.Task) Prepared {
	out := Prepared{IDs: []int{}, Errors: []string{}}
	ids, err := ParseIDExpression(input)
	if err != nil {
		out.Errors = append(out.Errors, "ID parsing error: "+strings.TrimPrefix(err.Error(), ErrInvalidExpression.Error()+": "))
		return out
	}
	v := ValidateIDs(ids, tasks)
	if len(v.Invalid) > 0 {
		out.Errors = append(out.Errors, "invalid task IDs: "+JoinIDs(v.Invalid))
	}
	if len(v.Valid) == 0 {
		out.Errors = append(out.Errors, "no valid task IDs provided")
	}
	out.IDs = v.Valid
	return out
}

// Summaries renders "[id] description" lines for confirmations.
func Summaries(tasks []model.Task, ids []int) []string {
	byID := make(map[int]model.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			out = append(out, fmt.Sprintf("[%d] %s", id, t.Description))
			continue
		}
		out = append(out, fmt.Sprintf("[%d] task not found", id))
	}
	return out
}

func JoinIDs(ids []int) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.Itoa(id))
	}
	return strings.Join(parts, ", ")
}
