package usecase

import (
	"sort"
	"time"

	"HeadlineTrends/internal/domain"
	"HeadlineTrends/internal/features"
)

var weekdayOrder = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Summarize computes the dashboard aggregates for a cleaned entry.
// Topic, sentiment and entity counts are ordered by frequency then label.
// Time-of-day and weekday counts list every bucket in calendar order; months
// list only the months present.
func Summarize(country string, rows []domain.CleanedArticle) domain.Summary {
	topics := map[string]int{}
	sentiments := map[string]int{}
	timeOfDay := map[string]int{}
	weekdays := map[string]int{}
	months := map[string]int{}
	authors := map[string][]string{}
	topicEntities := map[string]map[string]int{}

	for _, r := range rows {
		topics[r.Topic]++
		if r.Sentiment != "" {
			sentiments[string(r.Sentiment)]++
		}
		if r.TimeOfDay != "" {
			timeOfDay[r.TimeOfDay]++
		}
		if r.DayOfWeek != "" {
			weekdays[r.DayOfWeek]++
		}
		if r.Month != "" {
			months[r.Month]++
		}
		if r.Author != "" {
			authors[r.Author] = append(authors[r.Author], r.ShortTitle)
		}

		if topicEntities[r.Topic] == nil {
			topicEntities[r.Topic] = map[string]int{}
		}
		for _, e := range r.Entities {
			topicEntities[r.Topic][e]++
		}
	}

	entityCounts := make(map[string][]domain.Count, len(topicEntities))
	for topic, counts := range topicEntities {
		entityCounts[topic] = byFrequency(counts)
	}

	monthLabels := make([]string, 0, 12)
	for m := time.January; m <= time.December; m++ {
		monthLabels = append(monthLabels, m.String())
	}

	return domain.Summary{
		Country:       country,
		Articles:      len(rows),
		Topics:        byFrequency(topics),
		Sentiments:    byFrequency(sentiments),
		TimeOfDay:     inOrder(features.TimeOfDayLabels(), timeOfDay, true),
		DayOfWeek:     inOrder(weekdayOrder, weekdays, true),
		Months:        inOrder(monthLabels, months, false),
		Authors:       authors,
		TopicEntities: entityCounts,
	}
}

func byFrequency(counts map[string]int) []domain.Count {
	out := make([]domain.Count, 0, len(counts))
	for label, n := range counts {
		out = append(out, domain.Count{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func inOrder(labels []string, counts map[string]int, keepZero bool) []domain.Count {
	out := make([]domain.Count, 0, len(labels))
	for _, label := range labels {
		n := counts[label]
		if n == 0 && !keepZero {
			continue
		}
		out = append(out, domain.Count{Label: label, Count: n})
	}
	return out
}
