package bot

import (
	"context"
	"strconv"
	"strings"

	"warden/internal/config"
	"warden/internal/moderation"
	"warden/internal/modlog"
	"warden/internal/modstore"
	"warden/internal/platform"
	"warden/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type Bot struct {
	cfg      config.Config
	logger   *zap.Logger
	mods     *modstore.Store
	db       *storage.Store
	session  *discordgo.Session
	actuator *platform.Discord
	engine   *moderation.Engine
}

func New(cfg config.Config, logger *zap.Logger, mods *modstore.Store, db *storage.Store, recorder *modlog.Recorder) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildBans

	b := &Bot{
		cfg:      cfg,
		logger:   logger,
		mods:     mods,
		db:       db,
		session:  session,
		actuator: platform.NewDiscord(session),
	}
	b.engine = moderation.NewEngine(mods, b.actuator, recorder, moderation.LockdownConfig{
		ExcludeChannels:   cfg.Lockdown.ExcludeChannels,
		ExcludeCategories: cfg.Lockdown.ExcludeCategories,
	}, logger)

	recorder.SetNotifier(func(ctx context.Context, guildID string, entry modstore.Case) {
		b.notifyCase(ctx, guildID, entry)
	})

	return b, nil
}

// Actuator exposes the platform adapter so the scheduler can share the
// session.
func (b *Bot) Actuator() platform.Actuator {
	return b.actuator
}

func (b *Bot) Start() error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onInteractionCreate)

	if err := b.session.Open(); err != nil {
		return err
	}

	return b.registerCommands()
}

func (b *Bot) Close(ctx context.Context) {
	_ = ctx
	if b.session != nil {
		_ = b.session.Close()
	}
}

func (b *Bot) onReady(session *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info("discord ready", zap.String("user", session.State.User.Username))
}

func (b *Bot) notifyCase(ctx context.Context, guildID string, entry modstore.Case) {
	_ = ctx
	if b.cfg.ModLogChannel == "" {
		return
	}
	_, _ = b.session.ChannelMessageSend(b.cfg.ModLogChannel, formatCaseLine(entry))
}

func formatCaseLine(entry modstore.Case) string {
	parts := []string{"Case #" + strconv.Itoa(entry.CaseID), string(entry.Action)}
	if entry.UserID != "" {
		parts = append(parts, "user <@"+entry.UserID+">")
	}
	parts = append(parts, "by <@"+entry.ModeratorID+">")
	if entry.Duration != "" {
		parts = append(parts, "for "+entry.Duration)
	}
	if entry.Reason != "" {
		parts = append(parts, "reason: "+entry.Reason)
	}
	return strings.Join(parts, " | ")
}

// renderTemplate substitutes {reason} and {duration} in the configured
// DM templates. An empty reason reads "no reason given".
func renderTemplate(template, reason, durationToken string) string {
	if reason == "" {
		reason = "no reason given"
	}
	out := strings.ReplaceAll(template, "{reason}", reason)
	out = strings.ReplaceAll(out, "{duration}", durationToken)
	return out
}

func (b *Bot) sendDM(userID, text string) {
	if text == "" {
		return
	}
	if err := b.actuator.SendDirectMessage(userID, text); err != nil {
		b.logger.Debug("dm failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func (b *Bot) respond(session *discordgo.Session, interaction *discordgo.InteractionCreate, content string, ephemeral bool) {
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	_ = session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   flags,
		},
	})
}
