package core

type FeedbackKind string

const (
	FeedbackKindCorrection    FeedbackKind = "correction"    // Clear grammatical or vocabulary errors.
	FeedbackKindSuggestion    FeedbackKind = "suggestion"    // Stylistic improvements or better phrasing.
	FeedbackKindTip           FeedbackKind = "tip"           // General advice related to the language.
	FeedbackKindPronunciation FeedbackKind = "pronunciation" // Audio-related feedback.
)

// FeedbackItem is a single piece of language-correctness commentary on the
// user's last message. A turn produces zero or more items; an empty list is a
// valid result meaning "no issues found".
type FeedbackItem struct {
	Kind      FeedbackKind `json:"type"`
	Reasoning string       `json:"reasoning,omitempty"`
}
