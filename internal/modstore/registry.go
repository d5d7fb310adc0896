package modstore

import "time"

// Schedule appends a registry entry and persists. Duplicates are
// allowed; each is reversed independently.
func (s *Store) Schedule(entry TimedAction) error {
	return s.update(func(d *document) error {
		d.Timed = append(d.Timed, entry)
		return nil
	})
}

// DrainDue removes and returns every entry whose expiry is at or before
// now. The partition is a single swap under the store lock, so an entry
// scheduled concurrently is never lost. The pruned registry is not
// persisted here; the scheduler flushes once per tick via Persist.
func (s *Store) DrainDue(now time.Time) []TimedAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due, remaining []TimedAction
	for _, t := range s.doc.Timed {
		if t.ExpiresAt.After(now) {
			remaining = append(remaining, t)
		} else {
			due = append(due, t)
		}
	}
	s.doc.Timed = remaining
	return due
}

// Requeue puts entries back without persisting. Used by the scheduler
// for reversals that should be retried on a later tick.
func (s *Store) Requeue(entries []TimedAction) {
	if len(entries) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Timed = append(s.doc.Timed, entries...)
}

// ListTimed returns every outstanding entry for a guild.
func (s *Store) ListTimed(guildID string) []TimedAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []TimedAction
	for _, t := range s.doc.Timed {
		if t.GuildID == guildID {
			out = append(out, t)
		}
	}
	return out
}

// ListForUser returns the outstanding entries targeting a user.
func (s *Store) ListForUser(guildID, userID string) []TimedAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []TimedAction
	for _, t := range s.doc.Timed {
		if t.GuildID == guildID && t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}

// Cancel removes every entry matching guild, kind and, when non-empty,
// user and channel. Returns how many were removed. Used when an
// explicit counter-command (unban, unmute, unlock) makes the scheduled
// reversal redundant.
func (s *Store) Cancel(guildID string, kind Kind, userID, channelID string) (int, error) {
	removed := 0
	err := s.update(func(d *document) error {
		kept := d.Timed[:0]
		for _, t := range d.Timed {
			match := t.GuildID == guildID && t.Kind == kind
			if userID != "" {
				match = match && t.UserID == userID
			}
			if channelID != "" {
				match = match && t.ChannelID == channelID
			}
			if match {
				removed++
				continue
			}
			kept = append(kept, t)
		}
		d.Timed = kept
		return nil
	})
	return removed, err
}
