package task

import (
	"strings"
	"time"
)

var (
	highKeywords = []string{"urgent", "asap", "immediate", "important", "deadline"}
	lowKeywords  = []string{"optional", "later", "someday", "if possible"}
)

// SuggestPriority returns a suggested priority based on the task text
// and due date. A task due within 24 hours or containing a high-urgency
// keyword is high; low-urgency keywords yield low; everything else is
// medium.
func SuggestPriority(title, description string, dueDate *time.Time, now time.Time) Priority {
	text := strings.ToLower(title + " " + description)

	urgent := dueDate != nil && dueDate.Sub(now) <= 24*time.Hour

	if urgent || containsAny(text, highKeywords) {
		return PriorityHigh
	}
	if containsAny(text, lowKeywords) {
		return PriorityLow
	}
	return PriorityMedium
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
