package features

import (
	"regexp"
	"slices"
	"strings"
	"time"
)

// DefaultShortTitleWords is how many title words a short title keeps.
const DefaultShortTitleWords = 10

// numericEntity matches digits with optional thousands separators, decimals and a trailing percent sign.
var numericEntity = regexp.MustCompile(`^[\d,]+(\.\d+)?%?$`)

var timeOfDayLabels = [8]string{
	"12AM-3AM",
	"3AM-6AM",
	"6AM-9AM",
	"9AM-12PM",
	"12PM-3PM",
	"3PM-6PM",
	"6PM-9PM",
	"9PM-12AM",
}

// TimeOfDayLabels returns the 3-hour bucket labels in chronological order.
func TimeOfDayLabels() []string {
	return slices.Clone(timeOfDayLabels[:])
}

// ShortTitle keeps the first n whitespace-delimited words of title.
func ShortTitle(title string, n int) string {
	if n <= 0 {
		return ""
	}
	words := strings.Fields(title)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

// IsNumeric reports whether an entity is a bare number such as "1,500", "15.5" or "50%".
func IsNumeric(entity string) bool {
	return numericEntity.MatchString(entity)
}

// RemoveNumeric drops numeric entities and never returns nil.
func RemoveNumeric(entities []string) []string {
	kept := make([]string, 0, len(entities))
	for _, e := range entities {
		if IsNumeric(e) {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

// TimeOfDay maps an hour of day to its 3-hour bucket label. Hours outside [0,24) wrap around.
func TimeOfDay(hour int) string {
	hour %= 24
	if hour < 0 {
		hour += 24
	}
	return timeOfDayLabels[hour/3]
}

var publishedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParsePublished parses an ISO-8601 publication timestamp, keeping its offset.
// Values without a zone and zero offsets are read as UTC. Unparseable input yields nil.
func ParsePublished(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			if _, offset := t.Zone(); offset == 0 {
				t = t.UTC()
			}
			return &t
		}
	}
	return nil
}

// FormatPublished renders a parsed instant as RFC3339 in its own offset; nil renders as "".
func FormatPublished(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// TimeFeatures are the calendar buckets derived from a publication instant.
type TimeFeatures struct {
	DayOfWeek string
	Month     string
	TimeOfDay string
}

// Derive computes weekday, month and time-of-day labels from the wall clock of the
// instant's own offset. A nil instant yields empty features.
func Derive(published *time.Time) TimeFeatures {
	if published == nil {
		return TimeFeatures{}
	}
	t := *published
	return TimeFeatures{
		DayOfWeek: t.Weekday().String(),
		Month:     t.Month().String(),
		TimeOfDay: TimeOfDay(t.Hour()),
	}
}
