package model

import (
	"math"
	"sort"
	"time"
)

type TagCount struct {
	Tag   string
	Count int
}

type Stats struct {
	Total          int
	ByStatus       map[Status]int
	ByPriority     map[Priority]int
	Overdue        int
	CompletionRate int
	RecentActivity int
	TopTags        []TagCount
}

const (
	recentWindow = 7 * 24 * time.Hour
	topTagLimit  = 5
)

func CalculateStats(tasks []Task, now time.Time) Stats {
	stats := Stats{
		Total:      len(tasks),
		ByStatus:   make(map[Status]int, len(Statuses)),
		ByPriority: make(map[Priority]int, len(Priorities)),
	}
	for _, s := range Statuses {
		stats.ByStatus[s] = 0
	}
	for _, p := range Priorities {
		stats.ByPriority[p] = 0
	}

	since := now.Add(-recentWindow)
	tagCounts := map[string]int{}
	for _, t := range tasks {
		stats.ByStatus[t.Status]++
		stats.ByPriority[t.Priority]++
		if t.Overdue(now) {
			stats.Overdue++
		}
		if !t.CreatedAt.Before(since) {
			stats.RecentActivity++
		}
		for _, tag := range t.Tags {
			tagCounts[tag]++
		}
	}

	if stats.Total > 0 {
		stats.CompletionRate = int(math.Round(float64(stats.ByStatus[StatusDone]) / float64(stats.Total) * 100))
	}

	for tag, count := range tagCounts {
		stats.TopTags = append(stats.TopTags, TagCount{Tag: tag, Count: count})
	}
	sort.Slice(stats.TopTags, func(i, j int) bool {
		if stats.TopTags[i].Count != stats.TopTags[j].Count {
			return stats.TopTags[i].Count > stats.TopTags[j].Count
		}
		return stats.TopTags[i].Tag < stats.TopTags[j].Tag
	})
	if len(stats.TopTags) > topTagLimit {
		stats.TopTags = stats.TopTags[:topTagLimit]
	}
	return stats
}
