package orchestrator

import (
	"context"

	"lingokit/core"
	"lingokit/prompts"
)

// resolveTurnContext loads the persona, language profile and optional
// practice topic referenced by the request and flattens them into the
// prompt-context mapping. A missing persona or profile is fatal to the turn;
// an absent or unresolvable topic id degrades to open conversation.
func (o *TurnOrchestrator) resolveTurnContext(ctx context.Context, req *TurnRequest) (*TurnContext, error) {
	profile, err := o.deps.Profiles.Get(ctx, req.LanguageProfileID)
	if err != nil {
		return nil, &core.DataIntegrityError{Entity: "language_profile", ID: req.LanguageProfileID, Err: err}
	}

	persona, err := o.deps.Personas.Get(ctx, req.PersonaID)
	if err != nil {
		return nil, &core.DataIntegrityError{Entity: "persona", ID: req.PersonaID, Err: err}
	}

	topicDescription := prompts.FallbackTopicDescription
	if req.PracticeTopicID != nil {
		for _, topic := range profile.PracticeTopics {
			if topic.ID == *req.PracticeTopicID {
				topicDescription = topic.Name
				break
			}
		}
	}

	return &TurnContext{
		PersonaPrompt:            persona.Prompt,
		TargetLanguage:           profile.TargetLanguage,
		PracticeTopicDescription: topicDescription,
	}, nil
}
