package modstore

// AddLockedChannel records a channel as locked by the bot.
func (s *Store) AddLockedChannel(channelID string) error {
	return s.update(func(d *document) error {
		for _, id := range d.LockedChannels {
			if id == channelID {
				return nil
			}
		}
		d.LockedChannels = append(d.LockedChannels, channelID)
		return nil
	})
}

// RemoveLockedChannel reports ErrNotFound when the channel was not
// locked by the bot, which distinguishes bot locks from channels that
// are simply not writable.
func (s *Store) RemoveLockedChannel(channelID string) error {
	return s.update(func(d *document) error {
		for i, id := range d.LockedChannels {
			if id == channelID {
				d.LockedChannels = append(d.LockedChannels[:i], d.LockedChannels[i+1:]...)
				return nil
			}
		}
		return ErrNotFound
	})
}

// IsLockedChannel reports whether the bot locked the channel.
func (s *Store) IsLockedChannel(channelID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.doc.LockedChannels {
		if id == channelID {
			return true
		}
	}
	return false
}

// LockedChannels returns a copy of the locked channel set.
func (s *Store) LockedChannels() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.doc.LockedChannels))
	copy(out, s.doc.LockedChannels)
	return out
}

// BeginLockdown marks lockdown active and records the channels it
// locked, merging with any channels already locked individually.
func (s *Store) BeginLockdown(channelIDs []string) error {
	return s.update(func(d *document) error {
		seen := make(map[string]struct{}, len(d.LockedChannels))
		for _, id := range d.LockedChannels {
			seen[id] = struct{}{}
		}
		for _, id := range channelIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			d.LockedChannels = append(d.LockedChannels, id)
			seen[id] = struct{}{}
		}
		d.LockdownActive = true
		return nil
	})
}

// EndLockdown clears the locked set and the active flag, returning the
// channels that were locked.
func (s *Store) EndLockdown() ([]string, error) {
	var locked []string
	err := s.update(func(d *document) error {
		locked = d.LockedChannels
		d.LockedChannels = nil
		d.LockdownActive = false
		return nil
	})
	return locked, err
}

// LockdownActive reports whether a server lockdown is in effect.
func (s *Store) LockdownActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.LockdownActive
}
