package platform

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

// Discord implements Actuator on a discordgo session.
type Discord struct {
	session *discordgo.Session
}

func NewDiscord(session *discordgo.Session) *Discord {
	return &Discord{session: session}
}

func (d *Discord) Unban(guildID, userID string) error {
	return mapErr(d.session.GuildBanDelete(guildID, userID))
}

func (d *Discord) AddRole(guildID, userID, roleID string) error {
	return mapErr(d.session.GuildMemberRoleAdd(guildID, userID, roleID))
}

func (d *Discord) RemoveRole(guildID, userID, roleID string) error {
	return mapErr(d.session.GuildMemberRoleRemove(guildID, userID, roleID))
}

func (d *Discord) SetChannelSendPermission(guildID, channelID string, allowed bool) error {
	var allow, deny int64
	if allowed {
		allow = discordgo.PermissionSendMessages
	} else {
		deny = discordgo.PermissionSendMessages
	}
	return mapErr(d.session.ChannelPermissionSet(channelID, guildID, discordgo.PermissionOverwriteTypeRole, allow, deny))
}

func (d *Discord) SendDirectMessage(userID, text string) error {
	channel, err := d.session.UserChannelCreate(userID)
	if err != nil {
		return mapErr(err)
	}
	_, err = d.session.ChannelMessageSend(channel.ID, text)
	return mapErr(err)
}

func (d *Discord) GuildTextChannels(guildID string) ([]ChannelState, error) {
	channels, err := d.session.GuildChannels(guildID)
	if err != nil {
		return nil, mapErr(err)
	}

	var out []ChannelState
	for _, channel := range channels {
		if channel == nil {
			continue
		}
		if channel.Type != discordgo.ChannelTypeGuildText && channel.Type != discordgo.ChannelTypeGuildNews {
			continue
		}
		state := ChannelState{ID: channel.ID, CategoryID: channel.ParentID, SendAllowed: true}
		for _, overwrite := range channel.PermissionOverwrites {
			if overwrite.Type == discordgo.PermissionOverwriteTypeRole && overwrite.ID == guildID {
				state.SendAllowed = overwrite.Deny&discordgo.PermissionSendMessages == 0
				break
			}
		}
		out = append(out, state)
	}
	return out, nil
}

// mapErr translates discordgo REST failures into the taxonomy callers
// branch on; anything else passes through untouched.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil {
		switch rest.Response.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		case http.StatusForbidden:
			return fmt.Errorf("%w: %v", ErrForbidden, err)
		}
	}
	return err
}
