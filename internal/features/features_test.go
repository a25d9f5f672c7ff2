package features

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestShortTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		title string
		n     int
		want  string
	}{
		{"long title", "This is a very long title that should be shortened to ten words", 10, "This is a very long title that should be shortened"},
		{"shorter than limit", "Markets rally", 10, "Markets rally"},
		{"empty", "", 10, ""},
		{"collapses spacing", "  Fed   holds\nrates ", 10, "Fed holds rates"},
		{"custom limit", "one two three four", 2, "one two"},
		{"zero limit", "one two", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShortTitle(tt.title, tt.n); got != tt.want {
				t.Fatalf("ShortTitle(%q, %d) = %q, want %q", tt.title, tt.n, got, tt.want)
			}
		})
	}
}

func TestShortTitleNeverExceedsLimit(t *testing.T) {
	t.Parallel()

	title := strings.Repeat("word ", 50)
	got := ShortTitle(title, DefaultShortTitleWords)
	if n := len(strings.Fields(got)); n != DefaultShortTitleWords {
		t.Fatalf("expected %d words, got %d", DefaultShortTitleWords, n)
	}
}

func TestRemoveNumeric(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   []string
		want []string
	}{
		{[]string{"NASA", "Mars", "2025", "1500", "1,500"}, []string{"NASA", "Mars"}},
		{[]string{"NASA", "15.5", "50%", "99.9%"}, []string{"NASA"}},
		{[]string{"Elon Musk", "SpaceX", "1000"}, []string{"Elon Musk", "SpaceX"}},
		{[]string{"$100", "1e6", "3 million", "-5"}, []string{"$100", "1e6", "3 million", "-5"}},
		{nil, []string{}},
	}

	for _, tt := range tests {
		got := RemoveNumeric(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("RemoveNumeric(%v) = %v, want %v", tt.in, got, tt.want)
		}
		if again := RemoveNumeric(got); !reflect.DeepEqual(again, got) {
			t.Fatalf("RemoveNumeric not idempotent: %v then %v", got, again)
		}
		for _, e := range got {
			if IsNumeric(e) {
				t.Fatalf("numeric entity %q survived", e)
			}
		}
	}
}

func TestTimeOfDay(t *testing.T) {
	t.Parallel()

	want := map[int]string{
		0:  "12AM-3AM",
		4:  "3AM-6AM",
		7:  "6AM-9AM",
		10: "9AM-12PM",
		13: "12PM-3PM",
		16: "3PM-6PM",
		19: "6PM-9PM",
		22: "9PM-12AM",
	}
	for hour, label := range want {
		if got := TimeOfDay(hour); got != label {
			t.Fatalf("TimeOfDay(%d) = %q, want %q", hour, got, label)
		}
	}
}

func TestTimeOfDayPartitionsTheDay(t *testing.T) {
	t.Parallel()

	labels := TimeOfDayLabels()
	seen := map[string]int{}
	for hour := 0; hour < 24; hour++ {
		got := TimeOfDay(hour)
		if got != labels[hour/3] {
			t.Fatalf("hour %d landed in %q", hour, got)
		}
		seen[got]++
	}
	if len(seen) != 8 {
		t.Fatalf("expected 8 buckets, got %d", len(seen))
	}
	for label, n := range seen {
		if n != 3 {
			t.Fatalf("bucket %s covers %d hours", label, n)
		}
	}
}

func TestParsePublished(t *testing.T) {
	t.Parallel()

	want := time.Date(2025, time.April, 28, 12, 0, 0, 0, time.UTC)
	for _, in := range []string{
		"2025-04-28T12:00:00Z",
		"2025-04-28 12:00:00+00:00",
		"2025-04-28T12:00:00",
		"2025-04-28T12:00:00.000Z",
	} {
		got := ParsePublished(in)
		if got == nil || !got.Equal(want) {
			t.Fatalf("ParsePublished(%q) = %v, want %v", in, got, want)
		}
		if got.Location() != time.UTC {
			t.Fatalf("ParsePublished(%q) not in UTC", in)
		}
	}

	for _, bad := range []string{"", "yesterday", "28/04/2025"} {
		if got := ParsePublished(bad); got != nil {
			t.Fatalf("ParsePublished(%q) = %v, want nil", bad, got)
		}
	}
}

func TestParsePublishedKeepsOffset(t *testing.T) {
	t.Parallel()

	got := ParsePublished("2025-04-28T23:30:00+02:00")
	if got == nil {
		t.Fatal("expected a parsed instant")
	}
	if !got.Equal(time.Date(2025, time.April, 28, 21, 30, 0, 0, time.UTC)) {
		t.Fatalf("wrong instant: %v", got)
	}
	if _, offset := got.Zone(); offset != 2*3600 {
		t.Fatalf("offset = %d, want %d", offset, 2*3600)
	}

	want := TimeFeatures{DayOfWeek: "Monday", Month: "April", TimeOfDay: "9PM-12AM"}
	if tf := Derive(got); tf != want {
		t.Fatalf("Derive = %+v, want %+v", tf, want)
	}

	// Crossing midnight in UTC must not move the weekday or month.
	edge := ParsePublished("2025-05-01T01:00:00+03:00")
	if tf := Derive(edge); tf.DayOfWeek != "Thursday" || tf.Month != "May" || tf.TimeOfDay != "12AM-3AM" {
		t.Fatalf("Derive = %+v", tf)
	}
}

func TestTimeOfDayLabelsIsACopy(t *testing.T) {
	t.Parallel()

	labels := TimeOfDayLabels()
	labels[0] = "changed"
	if got := TimeOfDay(0); got != "12AM-3AM" {
		t.Fatalf("TimeOfDay(0) = %q after mutating the returned labels", got)
	}
	if got := TimeOfDayLabels()[0]; got != "12AM-3AM" {
		t.Fatalf("TimeOfDayLabels()[0] = %q", got)
	}
}

func TestDerive(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, time.April, 28, 13, 30, 0, 0, time.UTC)
	got := Derive(&ts)
	want := TimeFeatures{DayOfWeek: "Monday", Month: "April", TimeOfDay: "12PM-3PM"}
	if got != want {
		t.Fatalf("Derive = %+v, want %+v", got, want)
	}

	if empty := Derive(nil); empty != (TimeFeatures{}) {
		t.Fatalf("Derive(nil) = %+v", empty)
	}
}

func TestFormatPublished(t *testing.T) {
	t.Parallel()

	if got := FormatPublished(nil); got != "" {
		t.Fatalf("FormatPublished(nil) = %q", got)
	}

	ts := time.Date(2025, time.April, 28, 14, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	if got := FormatPublished(&ts); got != "2025-04-28T14:00:00+02:00" {
		t.Fatalf("FormatPublished = %q", got)
	}

	utc := time.Date(2025, time.April, 28, 12, 0, 0, 0, time.UTC)
	if got := FormatPublished(&utc); got != "2025-04-28T12:00:00Z" {
		t.Fatalf("FormatPublished = %q", got)
	}
}
