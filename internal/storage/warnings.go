package storage

import (
	"context"
	"time"
)

// Warning is a formal reprimand kept outside the case ledger so it can
// be deleted by index without disturbing case numbering.
type Warning struct {
	ID          int64
	GuildID     string
	UserID      string
	ModeratorID string
	Reason      string
	CreatedAt   time.Time
}

func (s *Store) AddWarning(ctx context.Context, w Warning) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO warnings (guild_id, user_id, moderator_id, reason, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, w.GuildID, w.UserID, w.ModeratorID, w.Reason, w.CreatedAt.Unix())
	return err
}

// ListWarnings returns a user's warnings, oldest first.
func (s *Store) ListWarnings(ctx context.Context, guildID, userID string) ([]Warning, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, guild_id, user_id, moderator_id, reason, created_at
		FROM warnings
		WHERE guild_id = ? AND user_id = ?
		ORDER BY created_at, id
	`, guildID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var warnings []Warning
	for rows.Next() {
		var w Warning
		var created int64
		if err := rows.Scan(&w.ID, &w.GuildID, &w.UserID, &w.ModeratorID, &w.Reason, &created); err != nil {
			return nil, err
		}
		w.CreatedAt = time.Unix(created, 0)
		warnings = append(warnings, w)
	}
	return warnings, rows.Err()
}

// DeleteWarning removes a user's warning by its 1-based position in the
// ListWarnings order.
func (s *Store) DeleteWarning(ctx context.Context, guildID, userID string, index int) error {
	warnings, err := s.ListWarnings(ctx, guildID, userID)
	if err != nil {
		return err
	}
	if index < 1 || index > len(warnings) {
		return ErrNotFound
	}
	_, err = s.db.ExecContext(ctx, `DELETE FROM warnings WHERE id = ?`, warnings[index-1].ID)
	return err
}
