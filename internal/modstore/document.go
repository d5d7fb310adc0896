package modstore

import "time"

// Action identifies the kind of moderation action a case records.
type Action string

const (
	ActionKick          Action = "Kick"
	ActionBan           Action = "Ban"
	ActionUnban         Action = "Unban"
	ActionSoftban       Action = "Softban"
	ActionMute          Action = "Mute"
	ActionUnmute        Action = "Unmute"
	ActionWarn          Action = "Warn"
	ActionTempRole      Action = "Temprole"
	ActionLock          Action = "Lock"
	ActionUnlock        Action = "Unlock"
	ActionLockdownStart Action = "Lockdown-Start"
	ActionLockdownEnd   Action = "Lockdown-End"
)

// Kind identifies what a timed action reverses when it expires.
type Kind string

const (
	KindBan      Kind = "ban"
	KindMute     Kind = "mute"
	KindTempRole Kind = "temprole"
	KindUnlock   Kind = "unlock_ch"
)

// Case is one ledger entry. UserID is empty for server-wide actions.
// Only Reason and Duration are mutable after creation.
type Case struct {
	CaseID      int       `json:"case_id"`
	Action      Action    `json:"action"`
	UserID      string    `json:"user_id,omitempty"`
	ModeratorID string    `json:"moderator_id"`
	Reason      string    `json:"reason,omitempty"`
	Duration    string    `json:"duration,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// TimedAction is a scheduled reversal of a previously applied sanction.
// UserID is unset for KindUnlock; RoleID is set only for KindTempRole;
// ChannelID is set only for KindUnlock.
type TimedAction struct {
	Kind      Kind      `json:"kind"`
	GuildID   string    `json:"guild_id"`
	UserID    string    `json:"user_id,omitempty"`
	RoleID    string    `json:"role_id,omitempty"`
	ChannelID string    `json:"channel_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// document is the single persisted state layout. Sets are serialized as
// ordered lists.
type document struct {
	Modlogs        map[string][]Case `json:"modlogs"`
	Timed          []TimedAction     `json:"timed"`
	LockedChannels []string          `json:"locked_channels"`
	LockdownActive bool              `json:"lockdown_active"`
}

// KindForAction maps a sanction to the kind that reverses it, when one
// exists. Only Ban, Mute, Temprole and Lock have timed reversals.
func KindForAction(action Action) (Kind, bool) {
	switch action {
	case ActionBan:
		return KindBan, true
	case ActionMute:
		return KindMute, true
	case ActionTempRole:
		return KindTempRole, true
	case ActionLock:
		return KindUnlock, true
	default:
		return "", false
	}
}
