package model

import "fmt"

type BulkFailure struct {
	ID     int
	Reason string
}

// BulkResult reports a batch mutation. SuccessCount+FailedCount always equals
// the number of distinct requested IDs.
type BulkResult struct {
	SuccessCount int
	FailedCount  int
	Errors       []BulkFailure
	RolledBack   bool
}

func (r BulkResult) FailedIDs() []int {
	out := make([]int, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, e.ID)
	}
	return out
}

func (r BulkResult) FullSuccess() bool {
	return r.FailedCount == 0 && !r.RolledBack
}

// Summary is the one-line status text shown after a batch.
func (r BulkResult) Summary(verb string) string {
	switch {
	case r.RolledBack:
		return fmt.Sprintf("%s failed: storage error, %d task(s) not changed", verb, r.FailedCount)
	case r.FailedCount == 0:
		return fmt.Sprintf("%d task(s) %s", r.SuccessCount, verb)
	default:
		return fmt.Sprintf("%d task(s) %s, %d failed", r.SuccessCount, verb, r.FailedCount)
	}
}

// Changes is a partial update. A nil field is left untouched. Status and
// priority stay raw strings so an invalid value can be rejected per task.
type Changes struct {
	Description *string
	Details     *string
	Status      *string
	Priority    *string
	DueDate     *string
	Tags        []string
	SetTags     bool
}

func (c Changes) Empty() bool {
	return c.Description == nil && c.Details == nil && c.Status == nil &&
		c.Priority == nil && c.DueDate == nil && !c.SetTags
}

func (c Changes) WithTags(tags []string) Changes {
	c.Tags = append([]string{}, tags...)
	c.SetTags = true
	return c
}

// Ptr is a small helper for building Changes literals.
func Ptr[T any](v T) *T {
	return &v
}
