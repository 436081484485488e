package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PersonaRepository provides CRUD access to personas.
type PersonaRepository struct {
	db *sql.DB
}

func (r *PersonaRepository) Get(ctx context.Context, id int64) (*Persona, error) {
	var p Persona
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, prompt FROM personas WHERE id = ?", id,
	).Scan(&p.ID, &p.Name, &p.Prompt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get persona: %w", err)
	}
	return &p, nil
}

func (r *PersonaRepository) List(ctx context.Context) ([]Persona, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, prompt FROM personas ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list personas: %w", err)
	}
	defer rows.Close()

	var out []Persona
	for rows.Next() {
		var p Persona
		if err := rows.Scan(&p.ID, &p.Name, &p.Prompt); err != nil {
			return nil, fmt.Errorf("scan persona: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PersonaRepository) Create(ctx context.Context, name, prompt string) (*Persona, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO personas (name, prompt) VALUES (?, ?)", name, prompt)
	if err != nil {
		return nil, fmt.Errorf("create persona: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create persona id: %w", err)
	}
	return &Persona{ID: id, Name: name, Prompt: prompt}, nil
}

func (r *PersonaRepository) Update(ctx context.Context, p *Persona) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE personas SET name = ?, prompt = ? WHERE id = ?", p.Name, p.Prompt, p.ID)
	if err != nil {
		return fmt.Errorf("update persona: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PersonaRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM personas WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete persona: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
