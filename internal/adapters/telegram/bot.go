// Package telegram drives the bot: it turns incoming chat messages
// into submission and annotation calls and renders the outcomes back
// as replies.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tiuub/RailwayHistoryTelegramBot/internal/core/domain"
	"github.com/tiuub/RailwayHistoryTelegramBot/internal/core/usecases"
	"github.com/tiuub/RailwayHistoryTelegramBot/internal/pkg/metrics"
)

// Bot consumes Telegram updates via long polling. Every non-command
// text is treated as a pasted itinerary; commands annotate a saved
// journey by replying to the message that submitted it.
type Bot struct {
	api         *tgbotapi.BotAPI
	pollTimeout int

	submissions *usecases.SubmissionService
	annotations *usecases.AnnotationService
	users       *usecases.UserService
	listings    *usecases.ListingService
}

// New authenticates against the Bot API and wires the services.
func New(
	token string,
	pollTimeout int,
	submissions *usecases.SubmissionService,
	annotations *usecases.AnnotationService,
	users *usecases.UserService,
	listings *usecases.ListingService,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	slog.Info("telegram bot authenticated", "username", api.Self.UserName)

	return &Bot{
		api:         api,
		pollTimeout: pollTimeout,
		submissions: submissions,
		annotations: annotations,
		users:       users,
		listings:    listings,
	}, nil
}

// Run polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	// From is optional in the Bot API (channel posts carry none); such
	// messages have no user to attribute a journey to.
	if msg.From == nil {
		slog.Debug("message without sender skipped", "chat_message", msg.MessageID)
		return
	}
	userID := strconv.FormatInt(msg.From.ID, 10)

	if msg.IsCommand() {
		b.handleCommand(ctx, msg, userID)
		return
	}

	res, err := b.submissions.Submit(ctx, userID, int64(msg.MessageID), msg.Text)
	if err != nil {
		slog.Warn("submission failed", "user", userID, "error", err)
		b.reply(msg, userMessage(err))
		return
	}

	switch res.Status {
	case domain.SubmissionDuplicate:
		b.reply(msg, fmt.Sprintf(
			"This journey is already in your history (message %d). Nothing was changed.",
			res.OriginalMessageID))
	default:
		b.reply(msg, fmt.Sprintf(
			"✅ Journey saved: %d segment(s). Reply to this message with /price, /category, /purpose or /delete.",
			len(res.Journey.Segments)))
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, userID string) {
	cmd := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())

	var err error
	switch cmd {
	case "start":
		_, err = b.users.GetOrCreate(ctx, userID)
		if err == nil {
			b.reply(msg, "Hi! Paste a shared train itinerary and I will keep it in your travel history.")
		}

	case "username":
		if args == "" {
			b.reply(msg, "Usage: /username <name>")
			metrics.CommandsTotal.WithLabelValues(cmd, "invalid").Inc()
			return
		}
		err = b.users.SetUsername(ctx, userID, args)
		if err == nil {
			b.reply(msg, fmt.Sprintf("Username set to %s.", args))
		}

	case "list":
		var summaries []domain.JourneySummary
		summaries, err = b.listings.ListByUserID(ctx, userID)
		if err == nil {
			b.reply(msg, renderSummaries(summaries))
		}

	case "price":
		replyTo, ok := repliedMessageID(msg)
		if !ok {
			b.replyUsage(msg, cmd, "/price <amount|None>, as a reply to a saved journey")
			return
		}
		if args == "" {
			b.replyUsage(msg, cmd, "/price <amount|None>")
			return
		}
		err = b.annotations.SetPrice(ctx, userID, replyTo, args)
		if err == nil {
			b.reply(msg, "Price updated.")
		}

	case "category", "purpose":
		replyTo, ok := repliedMessageID(msg)
		if !ok {
			b.replyUsage(msg, cmd, "/"+cmd+" <name> [#color], as a reply to a saved journey")
			return
		}
		name, color := splitTagArgs(args)
		if name == "" {
			b.replyUsage(msg, cmd, "/"+cmd+" <name> [#color]")
			return
		}
		kind := domain.TagCategory
		label := "Category"
		if cmd == "purpose" {
			kind = domain.TagPurpose
			label = "Purpose"
		}
		err = b.annotations.SetTag(ctx, userID, replyTo, kind, name, color)
		if err == nil {
			b.reply(msg, label+" updated.")
		}

	case "delete":
		replyTo, ok := repliedMessageID(msg)
		if !ok {
			b.replyUsage(msg, cmd, "/delete, as a reply to a saved journey")
			return
		}
		err = b.annotations.Delete(ctx, userID, replyTo)
		if err == nil {
			b.reply(msg, "Journey deleted from your history.")
		}

	default:
		b.reply(msg, fmt.Sprintf("Unknown command /%s.", cmd))
		metrics.CommandsTotal.WithLabelValues(cmd, "unknown").Inc()
		return
	}

	if err != nil {
		slog.Warn("command failed", "command", cmd, "user", userID, "error", err)
		metrics.CommandsTotal.WithLabelValues(cmd, "failed").Inc()
		b.reply(msg, userMessage(err))
		return
	}
	metrics.CommandsTotal.WithLabelValues(cmd, "ok").Inc()
}

// repliedMessageID extracts the id of the message a command replies
// to. Annotation commands are reply-scoped: without a reply target
// there is nothing to annotate.
func repliedMessageID(msg *tgbotapi.Message) (int64, bool) {
	if msg.ReplyToMessage == nil {
		return 0, false
	}
	return int64(msg.ReplyToMessage.MessageID), true
}

// splitTagArgs splits "<name> [#color]" where the color, if present,
// is the last whitespace-separated field and starts with '#'.
func splitTagArgs(args string) (name, color string) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return "", ""
	}
	last := fields[len(fields)-1]
	if len(fields) > 1 && strings.HasPrefix(last, "#") {
		return strings.Join(fields[:len(fields)-1], " "), last
	}
	return strings.Join(fields, " "), ""
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ReplyToMessageID = msg.MessageID
	if _, err := b.api.Send(out); err != nil {
		slog.Error("telegram send failed", "chat", msg.Chat.ID, "error", err)
	}
}

func (b *Bot) replyUsage(msg *tgbotapi.Message, cmd, usage string) {
	metrics.CommandsTotal.WithLabelValues(cmd, "invalid").Inc()
	b.reply(msg, "Usage: "+usage)
}

// userMessage maps service errors onto chat-friendly replies. Internal
// failures stay generic; the log carries the detail.
func userMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrMalformedInput):
		return "I could not read that itinerary. Paste the shared journey text unchanged."
	case errors.Is(err, domain.ErrStationNotFound):
		return "One of the stations in this itinerary is unknown to the journey service."
	case errors.Is(err, domain.ErrNoSuitableConnection):
		return "I could not find exactly this connection in the timetable."
	case errors.Is(err, domain.ErrJourneyNotFound):
		return "That message is not a saved journey of yours. Reply to the message that submitted it."
	case errors.Is(err, domain.ErrUsernameTaken):
		return "That username is already taken."
	case errors.Is(err, domain.ErrValidation):
		return "Invalid value: " + err.Error()
	default:
		return "Something went wrong, please try again later."
	}
}
