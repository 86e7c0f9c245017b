package models

import "strings"

// Category is the classification the enrichment pipeline assigns to a message.
type Category string

const (
	CategoryStudy Category = "STUDY"
	CategoryIdea  Category = "IDEA"
	CategoryRant  Category = "RANT"
	CategoryTask  Category = "TASK"
	CategoryLog   Category = "LOG"
	CategoryMedia Category = "MEDIA"
	CategoryQuote Category = "QUOTE"
	CategoryOther Category = "OTHER"
)

var Categories = []Category{
	CategoryStudy,
	CategoryIdea,
	CategoryRant,
	CategoryTask,
	CategoryLog,
	CategoryMedia,
	CategoryQuote,
	CategoryOther,
}

// ParseCategory matches the given string case-insensitively against the known
// categories.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToUpper(s))
	for _, known := range Categories {
		if c == known {
			return c, true
		}
	}
	return "", false
}

// Mood is the feeling the enrichment pipeline reads from a message.
type Mood string

const (
	MoodNeutral    Mood = "NEUTRAL"
	MoodHappy      Mood = "HAPPY"
	MoodSad        Mood = "SAD"
	MoodAngry      Mood = "ANGRY"
	MoodTired      Mood = "TIRED"
	MoodAnxious    Mood = "ANXIOUS"
	MoodExcited    Mood = "EXCITED"
	MoodBored      Mood = "BORED"
	MoodReflective Mood = "REFLECTIVE"
)

var Moods = []Mood{
	MoodNeutral,
	MoodHappy,
	MoodSad,
	MoodAngry,
	MoodTired,
	MoodAnxious,
	MoodExcited,
	MoodBored,
	MoodReflective,
}

func ParseMood(s string) (Mood, bool) {
	m := Mood(strings.ToUpper(s))
	for _, known := range Moods {
		if m == known {
			return m, true
		}
	}
	return "", false
}

// Priority orders tasks. Stored as text; null means unset.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Boldness rates how contrarian a media opinion is, on a four level ordinal
// scale. The labels are shown to the user verbatim.
type Boldness string

const (
	BoldnessCold    Boldness = "Cold Take"
	BoldnessMild    Boldness = "Mild Take"
	BoldnessHot     Boldness = "Hot Take"
	BoldnessNuclear Boldness = "Nuclear Take"
)

var BoldnessLevels = []Boldness{BoldnessCold, BoldnessMild, BoldnessHot, BoldnessNuclear}

func (b Boldness) IsValid() bool {
	for _, known := range BoldnessLevels {
		if b == known {
			return true
		}
	}
	return false
}
