package store

// Persona is a configured character the AI adopts during conversation.
type Persona struct {
	ID     int64
	Name   string
	Prompt string
}

// PracticeTopic is an optional steering subject attached to a profile.
type PracticeTopic struct {
	ID                int64
	Name              string
	LanguageProfileID int64
}

// LanguageProfile binds a target language to a persona and its topics.
type LanguageProfile struct {
	ID             int64
	Name           string
	TargetLanguage string
	PersonaID      int64
	PracticeTopics []PracticeTopic
}

// Settings is the single global settings record. VoiceID selects the default
// synthesis voice; EvaluationPrompt is appended verbatim to every system
// prompt.
type Settings struct {
	VoiceID          string
	EvaluationPrompt string
}
