package storage

import (
	"context"
	"time"
)

// Note is free-form moderator bookkeeping on a user. Notes never reach
// the case ledger and are invisible to the noted user.
type Note struct {
	ID          int64
	GuildID     string
	UserID      string
	ModeratorID string
	Text        string
	CreatedAt   time.Time
}

func (s *Store) AddNote(ctx context.Context, n Note) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notes (guild_id, user_id, moderator_id, text, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, n.GuildID, n.UserID, n.ModeratorID, n.Text, n.CreatedAt.Unix())
	return err
}

// ListNotes returns a user's notes, oldest first.
func (s *Store) ListNotes(ctx context.Context, guildID, userID string) ([]Note, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, guild_id, user_id, moderator_id, text, created_at
		FROM notes
		WHERE guild_id = ? AND user_id = ?
		ORDER BY created_at, id
	`, guildID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		var n Note
		var created int64
		if err := rows.Scan(&n.ID, &n.GuildID, &n.UserID, &n.ModeratorID, &n.Text, &created); err != nil {
			return nil, err
		}
		n.CreatedAt = time.Unix(created, 0)
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// UpdateNote replaces the text of a user's note by its 1-based position
// in the ListNotes order.
func (s *Store) UpdateNote(ctx context.Context, guildID, userID string, index int, text string) error {
	notes, err := s.ListNotes(ctx, guildID, userID)
	if err != nil {
		return err
	}
	if index < 1 || index > len(notes) {
		return ErrNotFound
	}
	_, err = s.db.ExecContext(ctx, `UPDATE notes SET text = ? WHERE id = ?`, text, notes[index-1].ID)
	return err
}

// DeleteNote removes a user's note by its 1-based position.
func (s *Store) DeleteNote(ctx context.Context, guildID, userID string, index int) error {
	notes, err := s.ListNotes(ctx, guildID, userID)
	if err != nil {
		return err
	}
	if index < 1 || index > len(notes) {
		return ErrNotFound
	}
	_, err = s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, notes[index-1].ID)
	return err
}

// ClearNotes removes every note on a user and reports how many.
func (s *Store) ClearNotes(ctx context.Context, guildID, userID string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE guild_id = ? AND user_id = ?`, guildID, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
