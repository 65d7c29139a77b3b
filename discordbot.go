package main

import (
	"fmt"
	"os"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/tr4cks/picled/led"
)

type DiscordBot struct {
	config     *DiscordBotConfig
	controller *led.Controller

	logger             zerolog.Logger
	session            *discordgo.Session
	registeredCommands []*discordgo.ApplicationCommand
}

type DiscordBotConfig struct {
	BotToken string `yaml:"bot-token" validate:"required"`
	GuildId  string `yaml:"guild-id"`
}

func (d *DiscordBot) Start() error {
	err := d.session.Open()
	if err != nil {
		return fmt.Errorf("cannot open the session: %w", err)
	}

	d.logger.Info().Msg("Adding commands...")
	registeredCommands := make([]*discordgo.ApplicationCommand, 0, len(commands))
	for _, v := range commands {
		cmd, err := d.session.ApplicationCommandCreate(d.session.State.User.ID, d.config.GuildId, v)
		if err != nil {
			d.registeredCommands = registeredCommands
			d.Stop()
			return fmt.Errorf("cannot create %q command: %w", v.Name, err)
		}
		registeredCommands = append(registeredCommands, cmd)
	}
	d.registeredCommands = registeredCommands

	return nil
}

func (d *DiscordBot) Stop() {
	d.logger.Info().Msg("Removing commands...")

	for _, v := range d.registeredCommands {
		err := d.session.ApplicationCommandDelete(d.session.State.User.ID, d.config.GuildId, v.ID)
		if err != nil {
			d.logger.Error().Err(err).Str("command", v.Name).Msg("Cannot delete command")
		}
	}
	d.registeredCommands = nil

	err := d.session.Close()
	if err != nil {
		d.logger.Error().Err(err).Msg("Unable to close the session")
	}

	d.logger.Info().Msg("Gracefully shutting down")
}

func (d *DiscordBot) respond(s *discordgo.Session, i *discordgo.InteractionCreate, logger zerolog.Logger, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags:   discordgo.MessageFlagsEphemeral,
			Content: content,
		},
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to send interaction response")
	}
}

func (d *DiscordBot) ledStatusHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	logger := d.logger.With().Str("username", interactionUsername(i)).Logger()
	logger.Info().Msg("A user checks the LED status")

	d.respond(s, i, logger, statusReply(d.controller.State()))
}

func (d *DiscordBot) ledToggleHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	logger := d.logger.With().Str("username", interactionUsername(i)).Logger()
	logger.Info().Msg("A user toggles the LED")

	state, err := d.controller.Toggle()
	if err != nil {
		logger.Error().Err(err).Msg("A problem occurred when toggling the LED")
	} else {
		logger.Info().Bool("led", state.On).Msg("LED toggled")
	}
	d.respond(s, i, logger, toggleReply(state, err))
}

func statusReply(state led.State) string {
	if state.On {
		return "💡 " + state.Status()
	}
	return "🌑 " + state.Status()
}

func toggleReply(state led.State, err error) string {
	if err != nil {
		return "❌ " + led.Message(err)
	}
	return statusReply(state)
}

func interactionUsername(i *discordgo.InteractionCreate) string {
	switch {
	case i.Member != nil && i.Member.User != nil:
		return i.Member.User.Username
	case i.User != nil:
		return i.User.Username
	default:
		return ""
	}
}

var commands = []*discordgo.ApplicationCommand{
	{
		Name:        "led_status",
		Description: "Shows whether the LED is on or off",
	},
	{
		Name:        "led_toggle",
		Description: "Switches the LED on or off",
		DefaultMemberPermissions: func() *int64 {
			perms := int64(discordgo.PermissionAdministrator)
			return &perms
		}(),
	},
}

func NewDiscordBot(config *DiscordBotConfig, controller *led.Controller) (*DiscordBot, error) {
	logger := newLogger(os.Stderr, "discord")

	session, err := discordgo.New("Bot " + config.BotToken)
	if err != nil {
		return nil, fmt.Errorf("invalid bot parameters: %w", err)
	}

	bot := &DiscordBot{config, controller, logger, session, nil}

	commandHandlers := map[string]func(*discordgo.Session, *discordgo.InteractionCreate){
		"led_status": bot.ledStatusHandler,
		"led_toggle": bot.ledToggleHandler,
	}

	session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		if h, ok := commandHandlers[i.ApplicationCommandData().Name]; ok {
			h(s, i)
		}
	})

	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		logger.Info().
			Str("username", s.State.User.Username).
			Msg(fmt.Sprintf("Logged in as: %v", s.State.User.Username))
	})

	return bot, nil
}
