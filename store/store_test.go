package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingokit/core"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	logger := core.NewLogger(func(string, string, map[string]interface{}) {})
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_RunsMigrationsAndSeeds(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	personas, err := s.Personas.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, personas)
	assert.Equal(t, "Friendly Barista", personas[0].Name)

	profiles, err := s.Profiles.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, profiles)
	assert.Equal(t, "Spanish", profiles[0].TargetLanguage)

	// The settings singleton exists from the first migration on.
	settings, err := s.Settings.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, settings.VoiceID)
}

func TestPersonaRepository_CRUD(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	created, err := s.Personas.Create(ctx, "Stern Professor", "a stern literature professor")
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := s.Personas.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Stern Professor", got.Name)

	got.Prompt = "a slightly less stern professor"
	require.NoError(t, s.Personas.Update(ctx, got))
	updated, err := s.Personas.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "a slightly less stern professor", updated.Prompt)

	require.NoError(t, s.Personas.Delete(ctx, created.ID))
	_, err = s.Personas.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Personas.Delete(ctx, created.ID), ErrNotFound)
}

func TestLanguageProfileRepository_TopicsLoadInOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	persona, err := s.Personas.Create(ctx, "Guide", "a patient tour guide")
	require.NoError(t, err)

	profile, err := s.Profiles.Create(ctx, "French", "French", persona.ID)
	require.NoError(t, err)

	_, err = s.Profiles.AddPracticeTopic(ctx, profile.ID, "asking for directions")
	require.NoError(t, err)
	_, err = s.Profiles.AddPracticeTopic(ctx, profile.ID, "buying tickets")
	require.NoError(t, err)

	got, err := s.Profiles.Get(ctx, profile.ID)
	require.NoError(t, err)
	require.Len(t, got.PracticeTopics, 2)
	assert.Equal(t, "asking for directions", got.PracticeTopics[0].Name)
	assert.Equal(t, "buying tickets", got.PracticeTopics[1].Name)
	assert.Equal(t, profile.ID, got.PracticeTopics[0].LanguageProfileID)
}

func TestLanguageProfileRepository_MissingIsNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Profiles.Get(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSettingsRepository_UpdateRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Settings.Update(ctx, &Settings{
		VoiceID:          "voice-42",
		EvaluationPrompt: "Always flag false friends.",
	}))

	got, err := s.Settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "voice-42", got.VoiceID)
	assert.Equal(t, "Always flag false friends.", got.EvaluationPrompt)

	// Clearing writes NULLs and reads back as empty strings.
	require.NoError(t, s.Settings.Update(ctx, &Settings{}))
	got, err = s.Settings.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.VoiceID)
	assert.Empty(t, got.EvaluationPrompt)
}
