package services

import (
	gocontext "context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	tb "gopkg.in/telebot.v3"

	"github.com/requiem-ai/bessie/context"
)

// TelegramService exposes the chatbot over Telegram. Each chat gets
// its own conversation session in the ChatService; /clear resets it.
type TelegramService struct {
	context.DefaultService

	Bot *tb.Bot

	chat          *ChatService
	allowedUserID int64
}

const TELEGRAM_SVC = "telegram_svc"

func (svc TelegramService) Id() string {
	return TELEGRAM_SVC
}

func (svc *TelegramService) Configure(ctx *context.Context) (err error) {
	allowedUserID, err := svc.parseAllowedUserID()
	if err != nil {
		return err
	}
	svc.allowedUserID = allowedUserID

	svc.Bot, err = tb.NewBot(tb.Settings{
		Token: os.Getenv("TELEGRAM_SECRET"),
		Poller: &tb.LongPoller{
			Timeout: 30 * time.Second,
		},
		OnError: func(err error, c tb.Context) {
			svc.decorateTelegramEvent(log.Error().Err(err), c).Msg("telegram bot error")
		},
	})
	if err != nil {
		return err
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *TelegramService) Start() error {
	svc.chat = svc.Service(CHAT_SVC).(*ChatService)

	if err := svc.registerCommands(); err != nil {
		log.Error().Err(err).Msg("failed to register telegram commands")
	}

	svc.Bot.Handle(tb.OnText, svc.guardHandler(svc.onText))
	svc.Bot.Handle("/start", svc.guardHandler(svc.onStart))
	svc.Bot.Handle("/clear", svc.guardHandler(svc.onClear))

	svc.Bot.Start()

	return nil
}

func (svc *TelegramService) Shutdown() {
	if svc.Bot == nil {
		return
	}
	svc.Bot.Stop()
}

func (svc *TelegramService) registerCommands() error {
	commands := []tb.Command{
		{Text: "start", Description: "Show quick start instructions"},
		{Text: "clear", Description: "Clear the conversation context"},
	}
	return svc.Bot.SetCommands(commands, tb.CommandScope{Type: tb.CommandScopeDefault})
}

func (svc *TelegramService) guardHandler(fn tb.HandlerFunc) tb.HandlerFunc {
	return func(c tb.Context) error {
		if c != nil {
			svc.decorateTelegramEvent(log.Info(), c).Msg("inbound telegram update")
		}

		allowed, reason := svc.isAllowedUser(c)
		if !allowed {
			svc.decorateTelegramEvent(
				log.Warn().
					Str("reason", reason).
					Int64("allowed_user_id", svc.allowedUserID),
				c,
			).Msg("telegram update blocked")
			return nil
		}

		if err := fn(c); err != nil {
			svc.decorateTelegramEvent(log.Error().Err(err), c).Msg("telegram handler returned error")
			return err
		}

		return nil
	}
}

func (svc *TelegramService) decorateTelegramEvent(event *zerolog.Event, c tb.Context) *zerolog.Event {
	if event == nil || c == nil {
		return event
	}

	if chat := c.Chat(); chat != nil {
		event = event.Int64("chat_id", chat.ID).Str("chat_type", string(chat.Type))
	}

	if sender := c.Sender(); sender != nil {
		event = event.Int64("user_id", sender.ID).Str("sender_username", sender.Username)
	}

	if msg := c.Message(); msg != nil {
		event = event.Str("message_text", msg.Text)
	}

	return event
}

func (svc *TelegramService) isAllowedUser(c tb.Context) (bool, string) {
	if svc.allowedUserID == 0 {
		return true, ""
	}
	if c == nil {
		return false, "missing_context"
	}
	sender := c.Sender()
	if sender == nil {
		return false, "missing_sender"
	}
	if sender.ID == svc.Bot.Me.ID {
		return false, "sender_is_bot" // Ignore bot msgs
	}
	if sender.ID != svc.allowedUserID {
		return false, "sender_not_allowed"
	}
	return true, ""
}

func (svc *TelegramService) parseAllowedUserID() (int64, error) {
	raw := strings.TrimSpace(os.Getenv("USER_ID"))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid USER_ID %q: %w", raw, err)
	}
	return value, nil
}

func (svc *TelegramService) onStart(c tb.Context) error {
	return c.Send("Send me a programming question and I will answer it. Use /clear to start over.")
}

func (svc *TelegramService) onText(c tb.Context) error {
	msg := c.Message()
	if msg == nil {
		return nil
	}

	if strings.HasPrefix(msg.Text, "/") {
		return nil
	}

	log.Info().Str("text", msg.Text).Msg("onText")

	_ = svc.Bot.Notify(c.Chat(), tb.Typing)

	resp, err := svc.chat.Run(gocontext.Background(), c.Chat().ID, c.Text())
	if err != nil {
		log.Error().Err(err).Msg("failed to run chat turn")
		return c.Send("Bessie failed to answer.")
	}

	_, err = svc.Bot.Send(c.Chat(),
		escapeMarkdownV2(resp),
		&tb.SendOptions{ParseMode: tb.ModeMarkdownV2})
	return err
}

func (svc *TelegramService) onClear(c tb.Context) error {
	svc.chat.Clear(c.Chat().ID)
	log.Info().Int64("chat_id", c.Chat().ID).Msg("onClear")
	return c.Send("Context cleared.")
}
