package classifier

import (
	"regexp"
	"strings"
)

// Emotion is one of the fixed emotion labels
type Emotion string

const (
	EmotionStressed Emotion = "Stressed"
	EmotionHappy    Emotion = "Happy"
	EmotionSad      Emotion = "Sad"
	EmotionAngry    Emotion = "Angry"
	EmotionNeutral  Emotion = "Neutral"
)

// Category is one of the fixed journal categories
type Category string

const (
	CategoryWork     Category = "Work & Career"
	CategoryFamily   Category = "Family & Relationships"
	CategoryHealth   Category = "Health & Wellness"
	CategoryFinance  Category = "Finance & Money"
	CategoryPersonal Category = "Personal & General"
)

// Emotions lists the labels in match priority order
var Emotions = []Emotion{
	EmotionStressed,
	EmotionHappy,
	EmotionSad,
	EmotionAngry,
	EmotionNeutral,
}

// Categories lists the labels in declaration (match) order
var Categories = []Category{
	CategoryWork,
	CategoryFamily,
	CategoryHealth,
	CategoryFinance,
	CategoryPersonal,
}

var spaceNormalizer = regexp.MustCompile(`\s+`)

// NormalizeEmotion snaps a model reply to an emotion label. The first label
// contained in the reply wins; no match yields Neutral.
func NormalizeEmotion(text string) Emotion {
	normalized := strings.ToLower(strings.TrimSpace(text))

	for _, emotion := range Emotions {
		if strings.Contains(normalized, strings.ToLower(string(emotion))) {
			return emotion
		}
	}

	return EmotionNeutral
}

// NormalizeCategory snaps a model reply to a category label, comparing with
// whitespace collapsed on both sides. No match yields Personal & General.
func NormalizeCategory(text string) Category {
	normalized := collapse(text)

	for _, category := range Categories {
		if strings.Contains(normalized, collapse(string(category))) {
			return category
		}
	}

	return CategoryPersonal
}

func collapse(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	return spaceNormalizer.ReplaceAllString(text, " ")
}
