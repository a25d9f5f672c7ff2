package domain

// Count pairs a label with the number of cleaned articles carrying it.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Summary holds the per-country aggregates the dashboard charts are drawn from.
type Summary struct {
	Country    string              `json:"country"`
	Articles   int                 `json:"articles"`
	Topics     []Count             `json:"topics"`
	Sentiments []Count             `json:"sentiments"`
	TimeOfDay  []Count             `json:"time_of_day"`
	DayOfWeek  []Count             `json:"day_of_week"`
	Months     []Count             `json:"months"`
	Authors    map[string][]string `json:"authors"`
	// TopicEntities maps each topic to entity frequencies, most frequent first.
	TopicEntities map[string][]Count `json:"topic_entities"`
}
