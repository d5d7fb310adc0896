package bot

import "github.com/bwmarrin/discordgo"

func userOption(required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "user",
		Description: "target user",
		Required:    required,
	}
}

func reasonOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "reason",
		Description: "reason for the action",
	}
}

func durationOption(required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "duration",
		Description: "duration such as 30s, 10m, 2h, 7d, 1w",
		Required:    required,
	}
}

func indexOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "index",
		Description: "1-based position in the list",
		Required:    true,
	}
}

func caseOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "case",
		Description: "case number",
		Required:    true,
	}
}

func channelOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionChannel,
		Name:        "channel",
		Description: "target channel, defaults to the current one",
	}
}

func (b *Bot) commandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "mute",
			Description: "Mute a member, optionally for a limited time",
			Options: []*discordgo.ApplicationCommandOption{
				userOption(true), durationOption(false), reasonOption(),
			},
		},
		{
			Name:        "unmute",
			Description: "Unmute a member",
			Options:     []*discordgo.ApplicationCommandOption{userOption(true)},
		},
		{
			Name:        "ban",
			Description: "Ban a member, optionally for a limited time",
			Options: []*discordgo.ApplicationCommandOption{
				userOption(true), durationOption(false), reasonOption(),
			},
		},
		{
			Name:        "unban",
			Description: "Unban a user by id",
			Options:     []*discordgo.ApplicationCommandOption{userOption(true)},
		},
		{
			Name:        "softban",
			Description: "Ban and immediately unban to purge recent messages",
			Options: []*discordgo.ApplicationCommandOption{
				userOption(true), reasonOption(),
			},
		},
		{
			Name:        "kick",
			Description: "Kick a member",
			Options: []*discordgo.ApplicationCommandOption{
				userOption(true), reasonOption(),
			},
		},
		{
			Name:        "warn",
			Description: "Warn a member",
			Options: []*discordgo.ApplicationCommandOption{
				userOption(true), reasonOption(),
			},
		},
		{
			Name:        "warnings",
			Description: "List a member's warnings",
			Options:     []*discordgo.ApplicationCommandOption{userOption(true)},
		},
		{
			Name:        "delwarn",
			Description: "Delete one of a member's warnings",
			Options: []*discordgo.ApplicationCommandOption{
				userOption(true), indexOption(),
			},
		},
		{
			Name:        "note",
			Description: "Add a moderator note on a member",
			Options: []*discordgo.ApplicationCommandOption{
				userOption(true),
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "text",
					Description: "note text",
					Required:    true,
				},
			},
		},
		{
			Name:        "notes",
			Description: "List the notes on a member",
			Options:     []*discordgo.ApplicationCommandOption{userOption(true)},
		},
		{
			Name:        "editnote",
			Description: "Edit one of a member's notes",
			Options: []*discordgo.ApplicationCommandOption{
				userOption(true), indexOption(),
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "text",
					Description: "new note text",
					Required:    true,
				},
			},
		},
		{
			Name:        "delnote",
			Description: "Delete one of a member's notes",
			Options: []*discordgo.ApplicationCommandOption{
				userOption(true), indexOption(),
			},
		},
		{
			Name:        "clearnotes",
			Description: "Delete every note on a member",
			Options:     []*discordgo.ApplicationCommandOption{userOption(true)},
		},
		{
			Name:        "temprole",
			Description: "Give a member a role for a limited time",
			Options: []*discordgo.ApplicationCommandOption{
				userOption(true),
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "role",
					Description: "role to assign",
					Required:    true,
				},
				durationOption(true),
				reasonOption(),
			},
		},
		{
			Name:        "modlogs",
			Description: "List a member's moderation cases",
			Options:     []*discordgo.ApplicationCommandOption{userOption(true)},
		},
		{
			Name:        "case",
			Description: "Show one moderation case",
			Options:     []*discordgo.ApplicationCommandOption{caseOption()},
		},
		{
			Name:        "reason",
			Description: "Edit the reason of a case",
			Options: []*discordgo.ApplicationCommandOption{
				caseOption(),
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "text",
					Description: "new reason",
					Required:    true,
				},
			},
		},
		{
			Name:        "duration",
			Description: "Edit the duration of a timed case",
			Options: []*discordgo.ApplicationCommandOption{
				caseOption(), durationOption(true),
			},
		},
		{
			Name:        "moderations",
			Description: "List outstanding timed actions",
		},
		{
			Name:        "modstats",
			Description: "Show a moderator's case counts",
			Options:     []*discordgo.ApplicationCommandOption{userOption(false)},
		},
		{
			Name:        "lock",
			Description: "Lock a channel, optionally for a limited time",
			Options: []*discordgo.ApplicationCommandOption{
				channelOption(), durationOption(false), reasonOption(),
			},
		},
		{
			Name:        "unlock",
			Description: "Unlock a channel locked by the bot",
			Options:     []*discordgo.ApplicationCommandOption{channelOption()},
		},
		{
			Name:        "lockdown",
			Description: "Lock or unlock every public channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "start",
					Description: "Lock every public channel",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "reason",
							Description: "reason for the lockdown",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "end",
					Description: "Unlock every channel locked by the lockdown",
				},
			},
		},
	}
}

func (b *Bot) registerCommands() error {
	commands := b.commandDefinitions()

	appID := b.session.State.User.ID
	existing, err := b.session.ApplicationCommands(appID, "")
	if err != nil {
		for _, cmd := range commands {
			if _, err := b.session.ApplicationCommandCreate(appID, "", cmd); err != nil {
				return err
			}
		}
		return nil
	}

	existingByName := make(map[string]*discordgo.ApplicationCommand)
	for _, cmd := range existing {
		existingByName[cmd.Name] = cmd
	}

	desired := make(map[string]struct{})
	for _, cmd := range commands {
		desired[cmd.Name] = struct{}{}
		if current, ok := existingByName[cmd.Name]; ok {
			if _, err := b.session.ApplicationCommandEdit(appID, "", current.ID, cmd); err != nil {
				return err
			}
			continue
		}
		if _, err := b.session.ApplicationCommandCreate(appID, "", cmd); err != nil {
			return err
		}
	}

	for _, cmd := range existing {
		if _, ok := desired[cmd.Name]; ok {
			continue
		}
		_ = b.session.ApplicationCommandDelete(appID, "", cmd.ID)
	}

	return nil
}
