package modstore

import (
	"time"

	"warden/internal/duration"
)

// Append assigns the next case id for the guild, stores the case and
// persists. Ids are count+1 under the store lock, so they stay unique
// and gap-free as long as every append goes through this method.
func (s *Store) Append(guildID string, action Action, userID, moderatorID, reason, durationToken string) (Case, error) {
	var entry Case
	err := s.update(func(d *document) error {
		cases := d.Modlogs[guildID]
		entry = Case{
			CaseID:      len(cases) + 1,
			Action:      action,
			UserID:      userID,
			ModeratorID: moderatorID,
			Reason:      reason,
			Duration:    durationToken,
			Timestamp:   time.Now().UTC(),
		}
		d.Modlogs[guildID] = append(cases, entry)
		return nil
	})
	return entry, err
}

// Get returns the case with the given id, or ErrNotFound.
func (s *Store) Get(guildID string, caseID int) (Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.doc.Modlogs[guildID] {
		if c.CaseID == caseID {
			return c, nil
		}
	}
	return Case{}, ErrNotFound
}

// ListByUser returns the cases recorded against a user, oldest first.
func (s *Store) ListByUser(guildID, userID string) []Case {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Case
	for _, c := range s.doc.Modlogs[guildID] {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out
}

// ListByModerator returns the cases a moderator created, oldest first.
func (s *Store) ListByModerator(guildID, moderatorID string) []Case {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Case
	for _, c := range s.doc.Modlogs[guildID] {
		if c.ModeratorID == moderatorID {
			out = append(out, c)
		}
	}
	return out
}

// SetReason replaces the reason of an existing case.
func (s *Store) SetReason(guildID string, caseID int, reason string) error {
	return s.update(func(d *document) error {
		cases := d.Modlogs[guildID]
		for i := range cases {
			if cases[i].CaseID == caseID {
				cases[i].Reason = reason
				return nil
			}
		}
		return ErrNotFound
	})
}

// SetDuration replaces the duration token of a timed case and moves the
// expiry of any matching outstanding registry entry to now plus the new
// duration. The token is validated first; on ErrInvalid nothing changes.
// Cases that were never timed report ErrNotFound.
func (s *Store) SetDuration(guildID string, caseID int, token string, now time.Time) error {
	d, err := duration.Parse(token)
	if err != nil {
		return err
	}
	return s.update(func(doc *document) error {
		cases := doc.Modlogs[guildID]
		for i := range cases {
			if cases[i].CaseID != caseID {
				continue
			}
			if cases[i].Duration == "" {
				return ErrNotFound
			}
			cases[i].Duration = token
			kind, ok := KindForAction(cases[i].Action)
			if !ok {
				return nil
			}
			for j := range doc.Timed {
				t := &doc.Timed[j]
				if t.GuildID == guildID && t.Kind == kind && t.UserID == cases[i].UserID {
					t.ExpiresAt = now.Add(d)
				}
			}
			return nil
		}
		return ErrNotFound
	})
}
