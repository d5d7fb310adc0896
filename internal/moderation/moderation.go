package moderation

import (
	"context"
	"fmt"
	"time"

	"warden/internal/duration"
	"warden/internal/modlog"
	"warden/internal/modstore"
	"warden/internal/platform"

	"go.uber.org/zap"
)

// Target is who a sanction applies to. The zero value means the whole
// server, which is what lockdown cases use.
type Target struct {
	userID string
}

func User(id string) Target { return Target{userID: id} }

func ServerWide() Target { return Target{} }

func (t Target) UserID() string { return t.userID }

// Sanction describes one moderation action to apply. Duration is the
// raw token as typed by the moderator ("10m", "2d"); empty means
// permanent. RoleID is set for temprole, ChannelID for lock.
type Sanction struct {
	GuildID     string
	ModeratorID string
	Target      Target
	Action      modstore.Action
	Reason      string
	Duration    string
	RoleID      string
	ChannelID   string
}

// LockdownConfig lists channels and categories exempt from lockdowns.
type LockdownConfig struct {
	ExcludeChannels   []string
	ExcludeCategories []string
}

// Engine turns sanctions into ledger cases and scheduled reversals.
// The platform side effect of a sanction (the actual ban, role change)
// is applied by the caller before ApplySanction; the engine only
// records and schedules. Lockdown is the exception: locking channels
// is the engine's own side effect, so it goes through the actuator.
type Engine struct {
	store    *modstore.Store
	actuator platform.Actuator
	recorder *modlog.Recorder
	lockdown LockdownConfig
	logger   *zap.Logger
}

func NewEngine(store *modstore.Store, actuator platform.Actuator, recorder *modlog.Recorder, lockdown LockdownConfig, logger *zap.Logger) *Engine {
	return &Engine{store: store, actuator: actuator, recorder: recorder, lockdown: lockdown, logger: logger}
}

// ApplySanction validates, records and schedules a sanction. The
// duration token is parsed before anything is written, so an invalid
// token leaves no trace. The returned case carries the assigned id.
func (e *Engine) ApplySanction(ctx context.Context, s Sanction, now time.Time) (modstore.Case, error) {
	var expiry time.Time
	if s.Duration != "" {
		d, err := duration.Parse(s.Duration)
		if err != nil {
			return modstore.Case{}, err
		}
		expiry = now.Add(d)
	}

	entry, err := e.store.Append(s.GuildID, s.Action, s.Target.UserID(), s.ModeratorID, s.Reason, s.Duration)
	if err != nil {
		return modstore.Case{}, err
	}
	e.recorder.Record(ctx, s.GuildID, entry)

	if s.Duration == "" {
		return entry, nil
	}
	kind, ok := modstore.KindForAction(s.Action)
	if !ok {
		return entry, nil
	}
	timed := modstore.TimedAction{
		Kind:      kind,
		GuildID:   s.GuildID,
		UserID:    s.Target.UserID(),
		RoleID:    s.RoleID,
		ChannelID: s.ChannelID,
		ExpiresAt: expiry,
	}
	if err := e.store.Schedule(timed); err != nil {
		return entry, fmt.Errorf("schedule reversal for case %d: %w", entry.CaseID, err)
	}
	return entry, nil
}

// CancelTimed drops outstanding reversals made redundant by an explicit
// counter-command. Returns how many entries were removed.
func (e *Engine) CancelTimed(guildID string, kind modstore.Kind, userID, channelID string) (int, error) {
	return e.store.Cancel(guildID, kind, userID, channelID)
}

// LockChannel denies sending in a channel and records the case. With a
// duration, the unlock is scheduled.
func (e *Engine) LockChannel(ctx context.Context, guildID, channelID, moderatorID, reason, durationToken string, now time.Time) (modstore.Case, error) {
	if durationToken != "" {
		if _, err := duration.Parse(durationToken); err != nil {
			return modstore.Case{}, err
		}
	}
	if err := e.actuator.SetChannelSendPermission(guildID, channelID, false); err != nil {
		return modstore.Case{}, err
	}
	if err := e.store.AddLockedChannel(channelID); err != nil {
		return modstore.Case{}, err
	}
	return e.ApplySanction(ctx, Sanction{
		GuildID:     guildID,
		ModeratorID: moderatorID,
		Action:      modstore.ActionLock,
		Reason:      reason,
		Duration:    durationToken,
		ChannelID:   channelID,
	}, now)
}

// UnlockChannel restores sending in a channel previously locked by the
// bot. Unlocking a channel the bot never locked fails with
// modstore.ErrNotFound; a channel that is merely not writable is not
// the bot's to unlock.
func (e *Engine) UnlockChannel(ctx context.Context, guildID, channelID, moderatorID string, now time.Time) (modstore.Case, error) {
	if !e.store.IsLockedChannel(channelID) {
		return modstore.Case{}, modstore.ErrNotFound
	}
	if err := e.actuator.SetChannelSendPermission(guildID, channelID, true); err != nil {
		return modstore.Case{}, err
	}
	if err := e.store.RemoveLockedChannel(channelID); err != nil {
		return modstore.Case{}, err
	}
	if _, err := e.store.Cancel(guildID, modstore.KindUnlock, "", channelID); err != nil {
		return modstore.Case{}, err
	}
	return e.ApplySanction(ctx, Sanction{
		GuildID:     guildID,
		ModeratorID: moderatorID,
		Action:      modstore.ActionUnlock,
		ChannelID:   channelID,
	}, now)
}

// LockdownStart locks every writable text channel in the guild except
// the configured exemptions, remembers the set, and records a single
// server-wide case. Channels that fail to lock are logged and skipped;
// a partial lockdown is better than none.
func (e *Engine) LockdownStart(ctx context.Context, guildID, moderatorID, reason string, now time.Time) (modstore.Case, int, error) {
	channels, err := e.actuator.GuildTextChannels(guildID)
	if err != nil {
		return modstore.Case{}, 0, err
	}

	var locked []string
	for _, ch := range channels {
		if !ch.SendAllowed || e.exempt(ch) {
			continue
		}
		if err := e.actuator.SetChannelSendPermission(guildID, ch.ID, false); err != nil {
			e.logger.Warn("lockdown skipped channel",
				zap.String("guild_id", guildID),
				zap.String("channel_id", ch.ID),
				zap.Error(err))
			continue
		}
		locked = append(locked, ch.ID)
	}
	if err := e.store.BeginLockdown(locked); err != nil {
		return modstore.Case{}, len(locked), err
	}

	entry, err := e.ApplySanction(ctx, Sanction{
		GuildID:     guildID,
		ModeratorID: moderatorID,
		Action:      modstore.ActionLockdownStart,
		Reason:      reason,
	}, now)
	return entry, len(locked), err
}

// LockdownEnd unlocks every channel in the remembered set, clears it,
// and records a server-wide case. Unlock failures are logged but never
// put a channel back in the set; the lockdown is over either way.
func (e *Engine) LockdownEnd(ctx context.Context, guildID, moderatorID string, now time.Time) (modstore.Case, int, error) {
	locked, err := e.store.EndLockdown()
	if err != nil {
		return modstore.Case{}, 0, err
	}

	restored := 0
	for _, channelID := range locked {
		if err := e.actuator.SetChannelSendPermission(guildID, channelID, true); err != nil {
			e.logger.Warn("lockdown end failed to unlock channel",
				zap.String("guild_id", guildID),
				zap.String("channel_id", channelID),
				zap.Error(err))
			continue
		}
		restored++
	}

	entry, err := e.ApplySanction(ctx, Sanction{
		GuildID:     guildID,
		ModeratorID: moderatorID,
		Action:      modstore.ActionLockdownEnd,
	}, now)
	return entry, restored, err
}

// LockdownActive reports whether a lockdown is in progress.
func (e *Engine) LockdownActive() bool {
	return e.store.LockdownActive()
}

func (e *Engine) exempt(ch platform.ChannelState) bool {
	for _, id := range e.lockdown.ExcludeChannels {
		if ch.ID == id {
			return true
		}
	}
	for _, id := range e.lockdown.ExcludeCategories {
		if ch.CategoryID != "" && ch.CategoryID == id {
			return true
		}
	}
	return false
}
