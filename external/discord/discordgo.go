package discord

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/bwmarrin/discordgo"
	discordpkg "github.com/foxseedlab/voicesatellite/internal/discord"
)

type Client struct {
	session   *discordgo.Session
	token     string
	botUserID string
}

func NewClient(token string) discordpkg.Client {
	return &Client{
		token: token,
	}
}

func (c *Client) Connect(ctx context.Context) error {
	s, err := discordgo.New("Bot " + c.token)
	if err != nil {
		return fmt.Errorf("create discord session: %w", err)
	}
	c.session = s
	s.Identify.Intents = discordgo.MakeIntent(discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates)

	opened := make(chan error, 1)
	go func() { opened <- s.Open() }()
	select {
	case err := <-opened:
		if err != nil {
			return fmt.Errorf("open discord gateway: %w", err)
		}
	case <-ctx.Done():
		_ = s.Close()
		return ctx.Err()
	}

	if _, err := c.GetBotUserID(); err != nil {
		return fmt.Errorf("resolve bot user: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	if c.session != nil {
		return c.session.Close()
	}
	return nil
}

func (c *Client) JoinVoiceChannel(guildID, channelID string) (discordpkg.VoiceConnection, error) {
	if c.session == nil {
		return nil, fmt.Errorf("discord session is not initialized")
	}
	// Joined muted: the satellite only listens on discord.
	vc, err := c.session.ChannelVoiceJoin(guildID, channelID, true, false)
	if err != nil {
		return nil, err
	}
	return &voiceConnection{vc: vc, botUserID: c.botUserID}, nil
}

func (c *Client) SendChannelMessage(channelID, content string) error {
	if c.session == nil {
		return fmt.Errorf("discord session is not initialized")
	}
	_, err := c.session.ChannelMessageSend(channelID, content)
	return err
}

func (c *Client) RegisterSlashCommandHandler(handler func(discordpkg.SlashCommandEvent)) {
	c.session.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) {
		ev, ok := slashCommandEvent(ic)
		if !ok {
			return
		}
		slog.Info("slash command interaction received", "guild_id", ev.GuildID, "channel_id", ev.ChannelID, "command", ev.CommandName, "user_id", ev.UserID)
		ev.RespondEphemeral = func(content string) error {
			return s.InteractionRespond(ic.Interaction, &discordgo.InteractionResponse{
				Type: discordgo.InteractionResponseChannelMessageWithSource,
				Data: &discordgo.InteractionResponseData{
					Content: content,
					Flags:   discordgo.MessageFlagsEphemeral,
				},
			})
		}
		handler(ev)
	})
}

// slashCommandEvent extracts the fields the bot cares about. Interactions
// that are not application commands, or carry no user, are ignored.
func slashCommandEvent(ic *discordgo.InteractionCreate) (discordpkg.SlashCommandEvent, bool) {
	if ic == nil || ic.Interaction == nil || ic.Type != discordgo.InteractionApplicationCommand {
		return discordpkg.SlashCommandEvent{}, false
	}
	data := ic.ApplicationCommandData()
	if data.Name == "" {
		return discordpkg.SlashCommandEvent{}, false
	}
	userID := ""
	if ic.Member != nil && ic.Member.User != nil {
		userID = ic.Member.User.ID
	}
	if userID == "" && ic.User != nil {
		userID = ic.User.ID
	}
	if userID == "" {
		return discordpkg.SlashCommandEvent{}, false
	}
	return discordpkg.SlashCommandEvent{
		GuildID:     ic.GuildID,
		ChannelID:   ic.ChannelID,
		CommandName: data.Name,
		UserID:      userID,
	}, true
}

func (c *Client) UpsertGuildSlashCommands(guildID string, defs []discordpkg.SlashCommandDefinition) error {
	appID := c.applicationID()
	if appID == "" {
		return fmt.Errorf("discord application id is not available")
	}
	existing, err := c.session.ApplicationCommands(appID, guildID)
	if err != nil {
		return err
	}
	existingByName := make(map[string]*discordgo.ApplicationCommand, len(existing))
	for _, cmd := range existing {
		if cmd == nil || cmd.Name == "" {
			continue
		}
		existingByName[cmd.Name] = cmd
	}
	for _, def := range defs {
		if err := c.upsertGuildSlashCommand(appID, guildID, def, existingByName); err != nil {
			return fmt.Errorf("upsert /%s: %w", def.Name, err)
		}
	}
	return nil
}

func (c *Client) upsertGuildSlashCommand(appID, guildID string, def discordpkg.SlashCommandDefinition, existingByName map[string]*discordgo.ApplicationCommand) error {
	if def.Name == "" {
		return nil
	}
	payload := &discordgo.ApplicationCommand{
		Name:        def.Name,
		Description: def.Description,
	}
	cmd, ok := existingByName[def.Name]
	if !ok {
		_, err := c.session.ApplicationCommandCreate(appID, guildID, payload)
		return err
	}
	if cmd.Description == def.Description {
		return nil
	}
	_, err := c.session.ApplicationCommandEdit(appID, guildID, cmd.ID, payload)
	return err
}

func (c *Client) GetBotUserID() (string, error) {
	if c.botUserID != "" {
		return c.botUserID, nil
	}
	if c.session == nil {
		return "", fmt.Errorf("discord session is not initialized")
	}
	if c.session.State != nil && c.session.State.User != nil && c.session.State.User.ID != "" {
		c.botUserID = c.session.State.User.ID
		return c.botUserID, nil
	}
	u, err := c.session.User("@me")
	if err != nil {
		return "", err
	}
	c.botUserID = u.ID
	return c.botUserID, nil
}

func (c *Client) applicationID() string {
	if c.session == nil || c.session.State == nil {
		return ""
	}
	if c.session.State.Application != nil && c.session.State.Application.ID != "" {
		return c.session.State.Application.ID
	}
	if c.session.State.User != nil {
		return c.session.State.User.ID
	}
	return ""
}

type voiceConnection struct {
	vc        *discordgo.VoiceConnection
	botUserID string
}

func (v *voiceConnection) Disconnect() error {
	return v.vc.Disconnect()
}

func (v *voiceConnection) ReceiveAudio(callback func(userID string, opusPacket []byte)) {
	if v.vc.OpusRecv == nil {
		return
	}
	speakers := newSSRCMap()
	v.vc.AddHandler(func(_ *discordgo.VoiceConnection, vs *discordgo.VoiceSpeakingUpdate) {
		if vs.Speaking {
			speakers.set(uint32(vs.SSRC), vs.UserID)
		}
	})
	for p := range v.vc.OpusRecv {
		if p == nil || len(p.Opus) == 0 {
			continue
		}
		userID := speakers.resolve(p.SSRC)
		if userID == v.botUserID {
			continue
		}
		callback(userID, p.Opus)
	}
}

type ssrcMap struct {
	mu    sync.RWMutex
	users map[uint32]string
}

func newSSRCMap() *ssrcMap {
	return &ssrcMap{users: make(map[uint32]string)}
}

func (m *ssrcMap) set(ssrc uint32, userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[ssrc] = userID
}

// resolve falls back to the SSRC itself until a speaking update names the
// user behind it.
func (m *ssrcMap) resolve(ssrc uint32) string {
	m.mu.RLock()
	userID := m.users[ssrc]
	m.mu.RUnlock()
	if userID == "" {
		return strconv.FormatUint(uint64(ssrc), 10)
	}
	return userID
}
