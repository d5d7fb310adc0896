package modlog

import (
	"context"

	"warden/internal/modstore"

	"go.uber.org/zap"
)

// Recorder fans a recorded case out to the structured log and, when a
// notifier is installed, to the guild's mod-log channel.
type Recorder struct {
	logger *zap.Logger
	notify func(context.Context, string, modstore.Case)
}

func NewRecorder(logger *zap.Logger) *Recorder {
	return &Recorder{logger: logger}
}

// SetNotifier installs the channel notifier. The bot wires this after
// the session is open; before that, cases are only logged.
func (r *Recorder) SetNotifier(notify func(ctx context.Context, guildID string, entry modstore.Case)) {
	r.notify = notify
}

func (r *Recorder) Record(ctx context.Context, guildID string, entry modstore.Case) {
	r.logger.Info("case recorded",
		zap.String("guild_id", guildID),
		zap.Int("case_id", entry.CaseID),
		zap.String("action", string(entry.Action)),
		zap.String("user_id", entry.UserID),
		zap.String("moderator_id", entry.ModeratorID),
		zap.String("reason", entry.Reason),
		zap.String("duration", entry.Duration))
	if r.notify != nil {
		r.notify(ctx, guildID, entry)
	}
}
