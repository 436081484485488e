package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// LanguageProfileRepository provides access to language profiles and their
// practice topics.
type LanguageProfileRepository struct {
	db *sql.DB
}

// Get returns the profile with its practice topics loaded.
func (r *LanguageProfileRepository) Get(ctx context.Context, id int64) (*LanguageProfile, error) {
	var p LanguageProfile
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, target_language, persona_id FROM language_profiles WHERE id = ?", id,
	).Scan(&p.ID, &p.Name, &p.TargetLanguage, &p.PersonaID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get language profile: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, language_profile_id FROM practice_topics WHERE language_profile_id = ? ORDER BY id", id)
	if err != nil {
		return nil, fmt.Errorf("get practice topics: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var t PracticeTopic
		if err := rows.Scan(&t.ID, &t.Name, &t.LanguageProfileID); err != nil {
			return nil, fmt.Errorf("scan practice topic: %w", err)
		}
		p.PracticeTopics = append(p.PracticeTopics, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *LanguageProfileRepository) List(ctx context.Context) ([]LanguageProfile, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, target_language, persona_id FROM language_profiles ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list language profiles: %w", err)
	}
	defer rows.Close()

	var out []LanguageProfile
	for rows.Next() {
		var p LanguageProfile
		if err := rows.Scan(&p.ID, &p.Name, &p.TargetLanguage, &p.PersonaID); err != nil {
			return nil, fmt.Errorf("scan language profile: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *LanguageProfileRepository) Create(ctx context.Context, name, targetLanguage string, personaID int64) (*LanguageProfile, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO language_profiles (name, target_language, persona_id) VALUES (?, ?, ?)",
		name, targetLanguage, personaID)
	if err != nil {
		return nil, fmt.Errorf("create language profile: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create language profile id: %w", err)
	}
	return &LanguageProfile{ID: id, Name: name, TargetLanguage: targetLanguage, PersonaID: personaID}, nil
}

func (r *LanguageProfileRepository) AddPracticeTopic(ctx context.Context, profileID int64, name string) (*PracticeTopic, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO practice_topics (name, language_profile_id) VALUES (?, ?)", name, profileID)
	if err != nil {
		return nil, fmt.Errorf("add practice topic: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("add practice topic id: %w", err)
	}
	return &PracticeTopic{ID: id, Name: name, LanguageProfileID: profileID}, nil
}

func (r *LanguageProfileRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM language_profiles WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete language profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
