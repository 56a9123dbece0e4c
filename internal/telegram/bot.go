package telegram

import (
	"fmt"
	"log"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const sendTimeout = 30 * time.Second

// Publisher posts rendered figures to a single chat.
type Publisher struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func NewPublisher(token string, chatID int64) (*Publisher, error) {
	return NewPublisherWithEndpoint(token, chatID, tgbotapi.APIEndpoint)
}

// NewPublisherWithEndpoint talks to a Bot API server other than the public
// one. endpoint is a format string taking the token and the method name.
func NewPublisherWithEndpoint(token string, chatID int64, endpoint string) (*Publisher, error) {
	client := &http.Client{Timeout: sendTimeout}
	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram: connect: %w", err)
	}
	log.Printf("telegram: authorized as %s", api.Self.UserName)
	return &Publisher{api: api, chatID: chatID}, nil
}

// SendFigure uploads a PNG as a photo with a caption.
func (p *Publisher) SendFigure(name string, img []byte, caption string) error {
	photo := tgbotapi.NewPhoto(p.chatID, tgbotapi.FileBytes{Name: name, Bytes: img})
	photo.Caption = caption
	if _, err := p.api.Send(photo); err != nil {
		return fmt.Errorf("telegram: send %s: %w", name, err)
	}
	log.Printf("telegram: sent %s to chat %d", name, p.chatID)
	return nil
}

// Caption summarizes a run for the photo message.
func Caption(runID string, samples, rawSamples, positive, negative int) string {
	return fmt.Sprintf("currentscape %s\n%d samples (%d before dedup)\n%d outward / %d inward current types",
		runID, samples, rawSamples, positive, negative)
}
