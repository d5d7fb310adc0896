package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"warden/internal/duration"
	"warden/internal/moderation"
	"warden/internal/modstore"
	"warden/internal/platform"
	"warden/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

var requiredPermission = map[string]int64{
	"mute":        discordgo.PermissionManageRoles,
	"unmute":      discordgo.PermissionManageRoles,
	"temprole":    discordgo.PermissionManageRoles,
	"ban":         discordgo.PermissionBanMembers,
	"unban":       discordgo.PermissionBanMembers,
	"softban":     discordgo.PermissionBanMembers,
	"kick":        discordgo.PermissionKickMembers,
	"warn":        discordgo.PermissionKickMembers,
	"warnings":    discordgo.PermissionKickMembers,
	"delwarn":     discordgo.PermissionKickMembers,
	"note":        discordgo.PermissionKickMembers,
	"notes":       discordgo.PermissionKickMembers,
	"editnote":    discordgo.PermissionKickMembers,
	"delnote":     discordgo.PermissionKickMembers,
	"clearnotes":  discordgo.PermissionKickMembers,
	"modlogs":     discordgo.PermissionKickMembers,
	"case":        discordgo.PermissionKickMembers,
	"reason":      discordgo.PermissionKickMembers,
	"duration":    discordgo.PermissionKickMembers,
	"moderations": discordgo.PermissionKickMembers,
	"modstats":    discordgo.PermissionKickMembers,
	"lock":        discordgo.PermissionManageChannels,
	"unlock":      discordgo.PermissionManageChannels,
	"lockdown":    discordgo.PermissionManageChannels,
}

func (b *Bot) onInteractionCreate(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if interaction.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := interaction.ApplicationCommandData()

	if interaction.GuildID == "" || interaction.Member == nil || interaction.Member.User == nil {
		b.respond(session, interaction, "This command only works in a server.", true)
		return
	}
	if perm, ok := requiredPermission[data.Name]; ok {
		if interaction.Member.Permissions&(perm|discordgo.PermissionAdministrator) == 0 {
			b.respond(session, interaction, "You do not have permission to use this command.", true)
			return
		}
	}

	ctx := context.Background()
	opts := optionMap(data.Options)
	moderatorID := interaction.Member.User.ID

	switch data.Name {
	case "mute":
		b.handleMute(ctx, session, interaction, opts, moderatorID)
	case "unmute":
		b.handleUnmute(ctx, session, interaction, opts, moderatorID)
	case "ban":
		b.handleBan(ctx, session, interaction, opts, moderatorID)
	case "unban":
		b.handleUnban(ctx, session, interaction, opts, moderatorID)
	case "softban":
		b.handleSoftban(ctx, session, interaction, opts, moderatorID)
	case "kick":
		b.handleKick(ctx, session, interaction, opts, moderatorID)
	case "warn":
		b.handleWarn(ctx, session, interaction, opts, moderatorID)
	case "warnings":
		b.handleWarnings(ctx, session, interaction, opts)
	case "delwarn":
		b.handleDelWarn(ctx, session, interaction, opts)
	case "note":
		b.handleNote(ctx, session, interaction, opts, moderatorID)
	case "notes":
		b.handleNotes(ctx, session, interaction, opts)
	case "editnote":
		b.handleEditNote(ctx, session, interaction, opts)
	case "delnote":
		b.handleDelNote(ctx, session, interaction, opts)
	case "clearnotes":
		b.handleClearNotes(ctx, session, interaction, opts)
	case "temprole":
		b.handleTempRole(ctx, session, interaction, opts, moderatorID)
	case "modlogs":
		b.handleModLogs(session, interaction, opts)
	case "case":
		b.handleCase(session, interaction, opts)
	case "reason":
		b.handleReason(session, interaction, opts)
	case "duration":
		b.handleDuration(session, interaction, opts)
	case "moderations":
		b.handleModerations(session, interaction)
	case "modstats":
		b.handleModStats(session, interaction, opts, moderatorID)
	case "lock":
		b.handleLock(ctx, session, interaction, opts, moderatorID)
	case "unlock":
		b.handleUnlock(ctx, session, interaction, opts, moderatorID)
	case "lockdown":
		b.handleLockdown(ctx, session, interaction, data.Options, moderatorID)
	}
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	out := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		out[opt.Name] = opt
	}
	return out
}

func stringOpt(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if opt, ok := opts[name]; ok {
		return opt.StringValue()
	}
	return ""
}

func intOpt(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) int {
	if opt, ok := opts[name]; ok {
		return int(opt.IntValue())
	}
	return 0
}

func (b *Bot) userOpt(session *discordgo.Session, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) *discordgo.User {
	if opt, ok := opts["user"]; ok {
		return opt.UserValue(session)
	}
	return nil
}

func (b *Bot) channelOpt(session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) string {
	if opt, ok := opts["channel"]; ok {
		if channel := opt.ChannelValue(session); channel != nil {
			return channel.ID
		}
	}
	return interaction.ChannelID
}

// errorMessage turns engine failures into replies a moderator can act
// on.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, duration.ErrInvalid):
		return "Invalid duration. Use a number followed by s, m, h, d or w, for example 10m or 2d."
	case errors.Is(err, platform.ErrForbidden):
		return "I do not have permission to do that."
	case errors.Is(err, platform.ErrNotFound), errors.Is(err, modstore.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		return "Not found."
	default:
		return "Something went wrong, check the logs."
	}
}

func (b *Bot) handleMute(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption, moderatorID string) {
	user := b.userOpt(session, opts)
	if user == nil {
		b.respond(session, interaction, "User is required.", true)
		return
	}
	if b.cfg.MuteRoleID == "" {
		b.respond(session, interaction, "No mute role is configured.", true)
		return
	}
	durationToken := stringOpt(opts, "duration")
	reason := stringOpt(opts, "reason")

	if durationToken != "" {
		if _, err := duration.Parse(durationToken); err != nil {
			b.respond(session, interaction, errorMessage(err), true)
			return
		}
	}
	if err := b.actuator.AddRole(interaction.GuildID, user.ID, b.cfg.MuteRoleID); err != nil {
		b.respond(session, interaction, errorMessage(err), true)
		return
	}
	entry, err := b.engine.ApplySanction(ctx, moderation.Sanction{
		GuildID:     interaction.GuildID,
		ModeratorID: moderatorID,
		Target:      moderation.User(user.ID),
		Action:      modstore.ActionMute,
		Reason:      reason,
		Duration:    durationToken,
	}, time.Now())
	if err != nil {
		b.respond(session, interaction, errorMessage(err), true)
		return
	}
	b.sendDM(user.ID, renderTemplate(b.cfg.Messages.Mute, reason, durationToken))
	b.respond(session, interaction, fmt.Sprintf("Muted <@%s> (case #%d).", user.ID, entry.CaseID), false)
}

func (b *Bot) handleUnmute(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption, moderatorID string) {
	user := b.userOpt(session, opts)
	if user == nil {
		b.respond(session, interaction, "User is required.", true)
		return
	}
	if b.cfg.MuteRoleID == "" {
		b.respond(session, interaction, "No mute role is configured.", true)
		return
	}
	if err := b.actuator.RemoveRole(interaction.GuildID, user.ID, b.cfg.MuteRoleID); err != nil && !errors.Is(err, platform.ErrNotFound) {
		b.respond(session, interaction, errorMessage(err), true)
		return
	}
	if _, err := b.engine.CancelTimed(interaction.GuildID, modstore.KindMute, user.ID, ""); err != nil {
		b.logger.Warn("cancel timed mute failed", zap.Error(err))
	}
	entry, err := b.engine.ApplySanction(ctx, moderation.Sanction{
		GuildID:     interaction.GuildID,
		ModeratorID: moderatorID,
		Target:      moderation.User(user.ID),
		Action:      modstore.ActionUnmute,
	}, time.Now())
	if err != nil {
		b.respond(session, interaction, errorMessage(err), true)
		return
	}
	b.sendDM(user.ID, b.cfg.Messages.Unmute)
	b.respond(session, interaction, fmt.Sprintf("Unmuted <@%s> (case #%d).", user.ID, entry.CaseID), false)
}

func (b *Bot) handleBan(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption, moderatorID string) {
	user := b.userOpt(session, opts)
	if user == nil {
		b.respond(session, interaction, "User is required.", true)
		return
	}
	durationToken := stringOpt(opts, "duration")
	reason := stringOpt(opts, "reason")

	if durationToken != "" {
		if _, err := duration.Parse(durationToken); err != nil {
			b.respond(session, interaction, errorMessage(err), true)
			return
		}
	}
	// DM before the ban lands, it is undeliverable afterwards.
	b.sendDM(user.ID, renderTemplate(b.cfg.Messages.Ban, reason, durationToken))
	if err := session.GuildBanCreateWithReason(interaction.GuildID, user.ID, reason, 0); err != nil {
		b.respond(session, interaction, errorMessage(err), true)
		return
	}
	entry, err := b.engine.ApplySanction(ctx, moderation.Sanction{
		GuildID:     interaction.GuildID,
		ModeratorID: moderatorID,
		Target:      moderation.User(user.ID),
		Action:      modstore.ActionBan,
		Reason:      reason,
		Duration:    durationToken,
	}, time.Now())
	if err != nil {
		b.respond(session, interaction, errorMessage(err), true)
		return
	}
	b.respond(session, interaction, fmt.Sprintf("Banned <@%s> (case #%d).", user.ID, entry.CaseID), false)
}

func (b *Bot) handleUnban(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption, moderatorID string) {
	user := b.userOpt(session, opts)
	if user == nil {
		b.respond(session, interaction, "User is required.", true)
		return
	}
	if err := b.actuator.Unban(interaction.GuildID, user.ID); err != nil {
		b.respond(session, interaction, errorMessage(err), true)
		return
	}
	if _, err := b.engine.CancelTimed(interaction.GuildID, modstore.KindBan, user.ID, ""); err != nil {
		b.logger.Warn("cancel timed ban failed", zap.Error(err))
	}
	entry, err := b.engine.ApplySanction(ctx, moderation.Sanction{
		GuildID:     interaction.GuildID,
		ModeratorID: moderatorID,
		Target:      moderation.User(user.ID),
		Action:      modstore.ActionUnban,
	}, time.Now())
	if err != nil {
		b.respond(session, interaction, errorMessage(err), true)
		return
	}
	b.respond(session, interaction, fmt.Sprintf("Unbanned <@%s> (case #%d).", user.ID, entry.CaseID), false)
}

func (b *Bot) handleSoftban(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption, moderatorID string) {
	user := b.userOpt(session, opts)
	if user == nil {
		b.respond(session, interaction, "User is required.", true)
		return
	}
	reason := stringOpt(opts, "reason")

	b.sendDM(user.ID, renderTemplate(b.cfg.Messages.Kick, reason, ""))
	if err := session.GuildBanCreateWithReason(interaction.GuildID, user.ID, reason, 7); err != nil {
		b.respond(session, interaction, errorMessage(err), true)
		return
	}
	if err := b.actuator.Unban(interaction.GuildID, user.ID); err != nil {
		b.respond(session, interaction, errorMessage(err), true)
		return
	}
	entry, err := b.engine.ApplySanction(ctx, moderation.Sanction{
		GuildID:     interaction.GuildID,
		ModeratorID: moderatorID,
		Target:      moderation.User(user.ID),
		Action:      modstore.ActionSoftban,
		Reason:      reason,
	}, time.Now())
	if err != nil {
		b.respond(session, interaction, errorMessage(err), true)
		return
	}
	b.respond(session, interaction, fmt.Sprintf("Softbanned <@%s> (case #%d).", user.ID, entry.CaseID), false)
}

func (b *Bot) handleKick(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption, moderatorID string) {
	user := b.userOpt(session, opts)
	if user == nil {
		b.respond(session, interaction, "User is required.", true)
		return
	}
	reason := stringOpt(opts, "reason")

	b.sendDM(user.ID, renderTemplate(b.cfg.Messages.Kick, reason, ""))
	if err := session.GuildMemberDeleteWithReason(interaction.GuildID, user.ID, reason); err != nil {
		b.respond(session, interaction, errorMessage(err), true)
		return
	}
	entry, err := b.engine.ApplySanction(ctx, moderation.Sanction{
		GuildID:     interaction.GuildID,
		ModeratorID: moderatorID,
		Target:      moderation.User(user.ID),
		Action:      modstore.ActionKick,
		Reason:      reason,
	}, time.Now())
	if err != nil {
		b.respond(session, interaction, errorMessage(err), true)
		return
	}
	b.respond(session, interaction, fmt.Sprintf("Kicked <@%s> (case #%d).", user.ID, entry.CaseID), false)
}

func (b *Bot) handleWarn(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption, moderatorID string) {
	user := b.userOpt(session, opts)
	if user == nil {
		b.respond(session, interaction, "User is required.", true)
		return
	}
	reason := stringOpt(opts, "reason")

	entry, err := b.engine.ApplySanction(ctx, moderation.Sanction{
		GuildID:     interaction.GuildID,
		ModeratorID: moderatorID,
		Target:      moderation.User(user.ID),
		Action:      modstore.ActionWarn,
		Reason:      reason,
	}, time.Now())
	if err != nil {
		b.respond(session, interaction, errorMessage(err), true)
		return
	}
	warning := storage.Warning{
		GuildID:     interaction.GuildID,
		UserID:      user.ID,
		ModeratorID: moderatorID,
		Reason:      reason,
		CreatedAt:   time.Now(),
	}
	if err := b.db.AddWarning(ctx, warning); err != nil {
		b.logger.Warn("warning persist failed", zap.Error(err))
	}
	b.sendDM(user.ID, renderTemplate(b.cfg.Messages.Warn, reason, ""))
	b.respond(session, interaction, fmt.Sprintf("Warned <@%s> (case #%d).", user.ID, entry.CaseID), false)
}

func (b *Bot) handleWarnings(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	user := b.userOpt(session, opts)
	if user == nil {
		b.respond(session, interaction, "User is required.", true)
		return
	}
	warnings, err := b.db.ListWarnings(ctx, interaction.GuildID, user.ID)
	if err != nil {
		b.respond(session, interaction, errorMessage(err), true)
		return
	}
	if len(warnings) == 0 {
		b.respond(session, interaction, fmt.Sprintf("<@%s> has no warnings.", user.ID), true)
		return
	}
	lines := make([]string, 0, len(warnings))
	for i, w := range warnings {
		reason := w.Reason
		if reason == "" {
			reason = "no reason given"
		}
		lines = append(lines, fmt.Sprintf("%d. %s (by <@%s>, %s)", i+1, reason, w.ModeratorID, w.CreatedAt.Format("2006-01-02")))
	}
	b.respond(session, interaction, strings.Join(lines, "\n"), true)
}

func (b *Bot) handleDelWarn(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	user := b.userOpt(session, opts)
	if user == nil {
		b.respond(session, interaction, "User is required.", true)
		return
	}
	index := intOpt(opts, "index")
	if err := b.db.DeleteWarning(ctx, interaction.GuildID, user.ID, index); err != nil {
		b.respond(session, interaction, errorMessage(err), true)
		return
	}
	b.respond(session, interaction, fmt.Sprintf("Deleted warning %d for <@%s>.", index, user.ID), false)
}

func (b *Bot) handleNote(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption, moderatorID string) {
	user := b.userOpt(session, opts)
	if user == nil {
		b.respond(session, interaction, "User is required.", true)
		return
	}
	note := storage.Note{
		GuildID:     interaction.GuildID,
		UserID:      user.ID,
		ModeratorID: moderatorID,
		Text:        stringOpt(opts, "text"),
		CreatedAt:   time.Now(),
	}
	if err := b.db.AddNote(ctx, note); err != nil {
		b.respond(session, interaction, errorMessage(err), true)
		return
	}
	b.respond(session, interaction, fmt.Sprintf("Note added for <@%s>.", user.ID), true)
}

func (b *Bot) handleNotes(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	user := b.userOpt(session, opts)
	if user == nil {
		b.respond(session, interaction, "User is required.", true)
		return
	}
	notes, err := b.db.ListNotes(ctx, interaction.GuildID, user.ID)
	if err != nil {
		b.respond(session, interaction, errorMessage(err), true)
		return
	}
	if len(notes) == 0 {
		b.respond(session, interaction, fmt.Sprintf("<@%s> has no notes.", user.ID), true)
		return
	}
	lines := make([]string, 0, len(notes))
	for i, n := range notes {
		lines = append(lines, fmt.Sprintf("%d. %s (by <@%s>, %s)", i+1, n.Text, n.ModeratorID, n.CreatedAt.Format("2006-01-02")))
	}
	b.respond(session, interaction, strings.Join(lines, "\n"), true)
}

func (b *Bot) handleEditNote(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	user := b.userOpt(session, opts)
	if user == nil {
		b.respond(session, interaction, "User is required.", true)
		return
	}
	index := intOpt(opts, "index")
	if err := b.db.UpdateNote(ctx, interaction.GuildID, user.ID, index, stringOpt(opts, "text")); err != nil {
		b.respond(session, interaction, errorMessage(err), true)
		return
	}
	b.respond(session, interaction, fmt.Sprintf("Note %d updated for <@%s>.", index, user.ID), true)
}

func (b *Bot) handleDelNote(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	user := b.userOpt(session, opts)
	if user == nil {
		b.respond(session, interaction, "User is required.", true)
		return
	}
	index := intOpt(opts, "index")
	if err := b.db.DeleteNote(ctx, interaction.GuildID, user.ID, index); err != nil {
		b.respond(session, interaction, errorMessage(err), true)
		return
	}
	b.respond(session, interaction, fmt.Sprintf("Note %d deleted for <@%s>.", index, user.ID), true)
}

func (b *Bot) handleClearNotes(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	user := b.userOpt(session, opts)
	if user == nil {
		b.respond(session, interaction, "User is required.", true)
		return
	}
	cleared, err := b.db.ClearNotes(ctx, interaction.GuildID, user.ID)
	if err != nil {
		b.respond(session, interaction, errorMessage(err), true)
		return
	}
	b.respond(session, interaction, fmt.Sprintf("Cleared %d notes for <@%s>.", cleared, user.ID), true)
}

func (b *Bot) handleTempRole(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption, moderatorID string) {
	user := b.userOpt(session, opts)
	if user == nil {
		b.respond(session, interaction, "User is required.", true)
		return
	}
	roleOpt, ok := opts["role"]
	if !ok {
		b.respond(session, interaction, "Role is required.", true)
		return
	}
	role := roleOpt.RoleValue(session, interaction.GuildID)
	if role == nil {
		b.respond(session, interaction, "Role is required.", true)
		return
	}
	durationToken := stringOpt(opts, "duration")
	if _, err := duration.Parse(durationToken); err != nil {
		b.respond(session, interaction, errorMessage(err), true)
		return
	}
	if err := b.actuator.AddRole(interaction.GuildID, user.ID, role.ID); err != nil {
		b.respond(session, interaction, errorMessage(err), true)
		return
	}
	entry, err := b.engine.ApplySanction(ctx, moderation.Sanction{
		GuildID:     interaction.GuildID,
		ModeratorID: moderatorID,
		Target:      moderation.User(user.ID),
		Action:      modstore.ActionTempRole,
		Reason:      stringOpt(opts, "reason"),
		Duration:    durationToken,
		RoleID:      role.ID,
	}, time.Now())
	if err != nil {
		b.respond(session, interaction, errorMessage(err), true)
		return
	}
	b.respond(session, interaction, fmt.Sprintf("Gave <@%s> the %s role for %s (case #%d).", user.ID, role.Name, durationToken, entry.CaseID), false)
}

func (b *Bot) handleModLogs(session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	user := b.userOpt(session, opts)
	if user == nil {
		b.respond(session, interaction, "User is required.", true)
		return
	}
	cases := b.mods.ListByUser(interaction.GuildID, user.ID)
	if len(cases) == 0 {
		b.respond(session, interaction, fmt.Sprintf("<@%s> has no cases.", user.ID), true)
		return
	}
	lines := make([]string, 0, len(cases))
	for _, c := range cases {
		lines = append(lines, formatCaseLine(c))
	}
	b.respond(session, interaction, strings.Join(lines, "\n"), true)
}

func (b *Bot) handleCase(session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	caseID := intOpt(opts, "case")
	entry, err := b.mods.Get(interaction.GuildID, caseID)
	if err != nil {
		b.respond(session, interaction, errorMessage(err), true)
		return
	}
	b.respond(session, interaction, formatCaseLine(entry)+" | "+entry.Timestamp.Format(time.RFC1123), true)
}

func (b *Bot) handleReason(session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	caseID := intOpt(opts, "case")
	if err := b.mods.SetReason(interaction.GuildID, caseID, stringOpt(opts, "text")); err != nil {
		b.respond(session, interaction, errorMessage(err), true)
		return
	}
	b.respond(session, interaction, fmt.Sprintf("Reason updated for case #%d.", caseID), false)
}

func (b *Bot) handleDuration(session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	caseID := intOpt(opts, "case")
	token := stringOpt(opts, "duration")
	if err := b.mods.SetDuration(interaction.GuildID, caseID, token, time.Now()); err != nil {
		if errors.Is(err, modstore.ErrNotFound) {
			b.respond(session, interaction, "That case has no duration to edit.", true)
			return
		}
		b.respond(session, interaction, errorMessage(err), true)
		return
	}
	b.respond(session, interaction, fmt.Sprintf("Duration of case #%d is now %s.", caseID, token), false)
}

func (b *Bot) handleModerations(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	timed := b.mods.ListTimed(interaction.GuildID)
	if len(timed) == 0 {
		b.respond(session, interaction, "No outstanding timed actions.", true)
		return
	}
	sort.Slice(timed, func(i, j int) bool { return timed[i].ExpiresAt.Before(timed[j].ExpiresAt) })
	lines := make([]string, 0, len(timed))
	for _, t := range timed {
		target := "<#" + t.ChannelID + ">"
		if t.UserID != "" {
			target = "<@" + t.UserID + ">"
		}
		lines = append(lines, fmt.Sprintf("%s %s expires %s", t.Kind, target, t.ExpiresAt.Format(time.RFC1123)))
	}
	b.respond(session, interaction, strings.Join(lines, "\n"), true)
}

func (b *Bot) handleModStats(session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption, moderatorID string) {
	target := moderatorID
	if user := b.userOpt(session, opts); user != nil {
		target = user.ID
	}
	cases := b.mods.ListByModerator(interaction.GuildID, target)
	if len(cases) == 0 {
		b.respond(session, interaction, fmt.Sprintf("<@%s> has no cases.", target), true)
		return
	}
	counts := make(map[modstore.Action]int)
	for _, c := range cases {
		counts[c.Action]++
	}
	actions := make([]string, 0, len(counts))
	for action := range counts {
		actions = append(actions, string(action))
	}
	sort.Strings(actions)
	lines := make([]string, 0, len(actions)+1)
	lines = append(lines, fmt.Sprintf("<@%s>: %d cases", target, len(cases)))
	for _, action := range actions {
		lines = append(lines, fmt.Sprintf("%s: %d", action, counts[modstore.Action(action)]))
	}
	b.respond(session, interaction, strings.Join(lines, "\n"), true)
}

func (b *Bot) handleLock(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption, moderatorID string) {
	channelID := b.channelOpt(session, interaction, opts)
	entry, err := b.engine.LockChannel(ctx, interaction.GuildID, channelID, moderatorID, stringOpt(opts, "reason"), stringOpt(opts, "duration"), time.Now())
	if err != nil {
		b.respond(session, interaction, errorMessage(err), true)
		return
	}
	b.respond(session, interaction, fmt.Sprintf("Locked <#%s> (case #%d).", channelID, entry.CaseID), false)
}

func (b *Bot) handleUnlock(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption, moderatorID string) {
	channelID := b.channelOpt(session, interaction, opts)
	entry, err := b.engine.UnlockChannel(ctx, interaction.GuildID, channelID, moderatorID, time.Now())
	if err != nil {
		if errors.Is(err, modstore.ErrNotFound) {
			b.respond(session, interaction, "That channel is not locked by me.", true)
			return
		}
		b.respond(session, interaction, errorMessage(err), true)
		return
	}
	b.respond(session, interaction, fmt.Sprintf("Unlocked <#%s> (case #%d).", channelID, entry.CaseID), false)
}

func (b *Bot) handleLockdown(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption, moderatorID string) {
	if len(options) == 0 {
		b.respond(session, interaction, "Use /lockdown start or /lockdown end.", true)
		return
	}
	sub := options[0]
	switch sub.Name {
	case "start":
		if b.engine.LockdownActive() {
			b.respond(session, interaction, "A lockdown is already active.", true)
			return
		}
		reason := ""
		if len(sub.Options) > 0 {
			reason = sub.Options[0].StringValue()
		}
		entry, locked, err := b.engine.LockdownStart(ctx, interaction.GuildID, moderatorID, reason, time.Now())
		if err != nil {
			b.respond(session, interaction, errorMessage(err), true)
			return
		}
		b.respond(session, interaction, fmt.Sprintf("Lockdown started, %d channels locked (case #%d).", locked, entry.CaseID), false)
	case "end":
		if !b.engine.LockdownActive() {
			b.respond(session, interaction, "No lockdown is active.", true)
			return
		}
		entry, restored, err := b.engine.LockdownEnd(ctx, interaction.GuildID, moderatorID, time.Now())
		if err != nil {
			b.respond(session, interaction, errorMessage(err), true)
			return
		}
		b.respond(session, interaction, fmt.Sprintf("Lockdown ended, %d channels restored (case #%d).", restored, entry.CaseID), false)
	}
}
