package platform

import "errors"

var (
	// ErrNotFound means the target guild, member, role, channel, or ban
	// no longer exists; the sanction being reversed is moot.
	ErrNotFound = errors.New("platform: not found")
	// ErrForbidden means the bot lacks the platform permission for the
	// call.
	ErrForbidden = errors.New("platform: forbidden")
)

// Actuator executes platform-level state changes on behalf of the
// moderation engine and the scheduler. Every method may fail with
// ErrNotFound or ErrForbidden; callers decide whether that is fatal.
type Actuator interface {
	Unban(guildID, userID string) error
	AddRole(guildID, userID, roleID string) error
	RemoveRole(guildID, userID, roleID string) error
	SetChannelSendPermission(guildID, channelID string, allowed bool) error
	// SendDirectMessage is best-effort; failures are never fatal.
	SendDirectMessage(userID, text string) error
	// GuildTextChannels lists the guild's text channels with the state
	// the lockdown coordinator needs.
	GuildTextChannels(guildID string) ([]ChannelState, error)
}

// ChannelState describes a guild text channel for lockdown decisions.
type ChannelState struct {
	ID          string
	CategoryID  string
	SendAllowed bool
}
