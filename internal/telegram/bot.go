// Package telegram answers Telegram messages through the chat service.
package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	startCmd     = "start"
	userIDPrefix = "tg:"

	welcomeText = "Hi! I'm your fitness assistant. Ask me anything about training, warmups or recovery."
	failureText = "Sorry, something went wrong. Please try again later."
)

// sender is the part of the Bot API used for replies; tests swap it out.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type botAPISender struct{ api *tgbotapi.BotAPI }

func (s botAPISender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) { return s.api.Send(c) }

// Replier answers one chat turn for a user.
type Replier interface {
	Reply(ctx context.Context, userID, question string) (string, error)
}

type Bot struct {
	api  *tgbotapi.BotAPI
	s    sender
	chat Replier
}

func New(botToken string, chat Replier) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	return &Bot{api: api, s: botAPISender{api: api}, chat: chat}, nil
}

// Start long-polls for updates until ctx is done.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	log.Printf("Telegram bot @%s started", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				b.handleIncomingMessage(ctx, update.Message)
			}
		}
	}
}

func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() && msg.Command() == startCmd {
		b.sendMessage(msg.Chat.ID, welcomeText)
		return
	}
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	userID := ChatUserID(msg.Chat.ID)
	log.Printf("Incoming message from %s: %q", userID, text)

	reply, err := b.chat.Reply(ctx, userID, text)
	if err != nil {
		log.Printf("failed to answer %s: %v", userID, err)
		b.sendMessage(msg.Chat.ID, failureText)
		return
	}
	b.sendMessage(msg.Chat.ID, reply)
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.s.Send(msg); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}

// ChatUserID maps a Telegram chat to the history user id.
func ChatUserID(chatID int64) string {
	return fmt.Sprintf("%s%d", userIDPrefix, chatID)
}
