package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/foxseedlab/voicesatellite/internal/discord"
	"github.com/foxseedlab/voicesatellite/internal/journal"
	"github.com/foxseedlab/voicesatellite/internal/session"
)

// commandTimeout stays under the 3s discord allows before an interaction
// must be answered.
const commandTimeout = 2 * time.Second

// Assistant is the part of the session controller that slash commands drive.
type Assistant interface {
	RequestStart(ctx context.Context)
	SignalStop(ctx context.Context)
	State() session.State
	Stats() session.Stats
}

// RunHistory reports the most recently journaled run.
type RunHistory interface {
	LastRun(ctx context.Context) (*journal.RunSummary, error)
}

type CommandHandler struct {
	guildID   string
	assistant Assistant
	history   RunHistory
}

// NewCommandHandler builds the slash command handler. history may be nil.
func NewCommandHandler(guildID string, assistant Assistant, history RunHistory) *CommandHandler {
	return &CommandHandler{guildID: guildID, assistant: assistant, history: history}
}

func SlashCommandDefinitions() []discord.SlashCommandDefinition {
	return []discord.SlashCommandDefinition{
		{Name: slashCommandStart, Description: slashCommandStartDescription},
		{Name: slashCommandStop, Description: slashCommandStopDescription},
		{Name: slashCommandStatus, Description: slashCommandStatusDescription},
	}
}

func (h *CommandHandler) HandleSlashCommand(ev discord.SlashCommandEvent) {
	reply := h.reply(ev)
	if ev.RespondEphemeral == nil {
		return
	}
	if err := ev.RespondEphemeral(reply); err != nil {
		slog.Error("failed to respond to slash command", "command", ev.CommandName, "user_id", ev.UserID, "error", err)
	}
}

func (h *CommandHandler) reply(ev discord.SlashCommandEvent) string {
	if ev.GuildID != h.guildID {
		return messageEphemeralWrongGuild
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	switch ev.CommandName {
	case slashCommandStart:
		return h.start(ctx, ev)
	case slashCommandStop:
		return h.stop(ctx, ev)
	case slashCommandStatus:
		return h.status(ctx)
	default:
		return messageEphemeralUnknownCommand
	}
}

func (h *CommandHandler) start(ctx context.Context, ev discord.SlashCommandEvent) string {
	if h.assistant.State() != session.StateIdle {
		return messageEphemeralAlreadyRunning
	}
	slog.Info("assistant start requested", "user_id", ev.UserID)
	h.assistant.RequestStart(ctx)
	// A failed request rolls the controller back to idle.
	if h.assistant.State() == session.StateIdle {
		return messageEphemeralStartFailed
	}
	return messageEphemeralStartRequested
}

func (h *CommandHandler) stop(ctx context.Context, ev discord.SlashCommandEvent) string {
	if h.assistant.State() == session.StateIdle {
		return messageEphemeralNotRunning
	}
	slog.Info("assistant stop requested", "user_id", ev.UserID)
	h.assistant.SignalStop(ctx)
	return messageEphemeralStopped
}

func (h *CommandHandler) status(ctx context.Context) string {
	st := h.assistant.Stats()
	reply := fmt.Sprintf(messageStatusFormat, h.assistant.State(), st.ForwardedPackets, st.ForwardedBytes, st.SendFailures)
	if h.history == nil {
		return reply
	}
	summary, err := h.history.LastRun(ctx)
	if err != nil {
		slog.Warn("failed to load last run for status", "error", err)
		return reply
	}
	if summary == nil {
		return reply
	}
	return reply + "\n" + lastRunMessage(summary)
}
