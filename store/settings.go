package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SettingsRepository provides access to the single global settings record.
type SettingsRepository struct {
	db *sql.DB
}

// Get returns the settings record. Absent values come back as empty strings.
func (r *SettingsRepository) Get(ctx context.Context) (*Settings, error) {
	var voiceID, evaluationPrompt sql.NullString
	err := r.db.QueryRowContext(ctx,
		"SELECT voice_id, evaluation_prompt FROM settings WHERE id = 1",
	).Scan(&voiceID, &evaluationPrompt)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return &Settings{
		VoiceID:          voiceID.String,
		EvaluationPrompt: evaluationPrompt.String,
	}, nil
}

// Update replaces the settings record.
func (r *SettingsRepository) Update(ctx context.Context, s *Settings) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE settings SET voice_id = ?, evaluation_prompt = ? WHERE id = 1",
		nullable(s.VoiceID), nullable(s.EvaluationPrompt))
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
