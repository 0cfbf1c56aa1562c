package discord

import "context"

type SlashCommandDefinition struct {
	Name        string
	Description string
}

type SlashCommandEvent struct {
	GuildID          string
	ChannelID        string
	CommandName      string
	UserID           string
	RespondEphemeral func(content string) error
}

type Client interface {
	Connect(ctx context.Context) error
	Close() error
	JoinVoiceChannel(guildID, channelID string) (VoiceConnection, error)
	SendChannelMessage(channelID, content string) error
	RegisterSlashCommandHandler(handler func(SlashCommandEvent))
	UpsertGuildSlashCommands(guildID string, defs []SlashCommandDefinition) error
	GetBotUserID() (string, error)
}

type VoiceConnection interface {
	Disconnect() error
	// ReceiveAudio blocks, delivering each received opus packet until the
	// connection is closed.
	ReceiveAudio(callback func(userID string, opusPacket []byte))
}
