package scheduler

import (
	"context"
	"errors"
	"time"

	"warden/internal/modstore"
	"warden/internal/platform"

	"go.uber.org/zap"
)

// Config controls the scheduler loop. Interval bounds the worst-case
// lateness of a reversal; reversals are idempotent and safe to fire
// late, so precision does not matter.
type Config struct {
	Interval      time.Duration
	MuteRoleID    string
	UnmuteMessage string
}

// Loop polls the timed action registry and reverses due entries through
// the actuator. It is silent on success and logs per-entry failures.
type Loop struct {
	store    *modstore.Store
	actuator platform.Actuator
	cfg      Config
	logger   *zap.Logger
}

func New(store *modstore.Store, actuator platform.Actuator, cfg Config, logger *zap.Logger) *Loop {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	return &Loop{store: store, actuator: actuator, cfg: cfg, logger: logger}
}

// Run ticks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.Tick(time.Now())
		case <-ctx.Done():
			return
		}
	}
}

// Tick drains the due entries and reverses each independently. An entry
// whose target no longer exists is dropped: the sanction is moot. Any
// other failure keeps the entry in the registry for the next tick. The
// pruned registry is persisted once per tick, not per entry.
func (l *Loop) Tick(now time.Time) {
	due := l.store.DrainDue(now)
	if len(due) == 0 {
		return
	}

	var retry []modstore.TimedAction
	for _, entry := range due {
		err := l.reverse(entry)
		if err == nil || errors.Is(err, platform.ErrNotFound) {
			continue
		}
		l.logger.Warn("reversal failed",
			zap.String("kind", string(entry.Kind)),
			zap.String("guild_id", entry.GuildID),
			zap.String("user_id", entry.UserID),
			zap.Error(err))
		retry = append(retry, entry)
	}
	l.store.Requeue(retry)

	if err := l.store.Persist(); err != nil {
		// The in-memory registry stays authoritative; the next
		// successful persist writes the full current state.
		l.logger.Error("registry persist failed", zap.Error(err))
	}
}

func (l *Loop) reverse(entry modstore.TimedAction) error {
	switch entry.Kind {
	case modstore.KindBan:
		return l.actuator.Unban(entry.GuildID, entry.UserID)
	case modstore.KindMute:
		if l.cfg.MuteRoleID == "" {
			l.logger.Warn("mute role not configured, dropping expired mute",
				zap.String("guild_id", entry.GuildID),
				zap.String("user_id", entry.UserID))
			return nil
		}
		if err := l.actuator.RemoveRole(entry.GuildID, entry.UserID, l.cfg.MuteRoleID); err != nil {
			return err
		}
		if l.cfg.UnmuteMessage != "" {
			if err := l.actuator.SendDirectMessage(entry.UserID, l.cfg.UnmuteMessage); err != nil {
				l.logger.Debug("unmute notification failed",
					zap.String("user_id", entry.UserID), zap.Error(err))
			}
		}
		return nil
	case modstore.KindTempRole:
		return l.actuator.RemoveRole(entry.GuildID, entry.UserID, entry.RoleID)
	case modstore.KindUnlock:
		return l.actuator.SetChannelSendPermission(entry.GuildID, entry.ChannelID, true)
	default:
		l.logger.Warn("unknown timed action kind", zap.String("kind", string(entry.Kind)))
		return nil
	}
}
