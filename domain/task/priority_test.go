package task

import (
	"testing"
	"time"
)

func TestSuggestPriority(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	soon := now.Add(3 * time.Hour)
	nextWeek := now.Add(7 * 24 * time.Hour)

	tests := []struct {
		name        string
		title       string
		description string
		dueDate     *time.Time
		want        Priority
	}{
		{
			name:  "plain task is medium",
			title: "Water the plants",
			want:  PriorityMedium,
		},
		{
			name:  "urgent keyword in title",
			title: "URGENT: fix the build",
			want:  PriorityHigh,
		},
		{
			name:        "keyword in description",
			title:       "Release",
			description: "deadline is friday",
			want:        PriorityHigh,
		},
		{
			name:    "due within 24 hours",
			title:   "Water the plants",
			dueDate: &soon,
			want:    PriorityHigh,
		},
		{
			name:    "due next week stays medium",
			title:   "Water the plants",
			dueDate: &nextWeek,
			want:    PriorityMedium,
		},
		{
			name:  "low keyword",
			title: "Reorganize bookshelf someday",
			want:  PriorityLow,
		},
		{
			name:        "high keyword wins over low keyword",
			title:       "optional cleanup",
			description: "but urgent",
			want:        PriorityHigh,
		},
		{
			name:    "distant due date with low keyword",
			title:   "if possible, tidy the garage",
			dueDate: &nextWeek,
			want:    PriorityLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SuggestPriority(tt.title, tt.description, tt.dueDate, now)
			if got != tt.want {
				t.Errorf("SuggestPriority() = %q, want %q", got, tt.want)
			}
		})
	}
}
