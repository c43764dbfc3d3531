// Package sms sends text messages through Plivo.
package sms

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"github.com/plivo/plivo-go"
	"github.com/rs/zerolog"

	"github.com/deppfellow/bctw-api/internal/config"
	"github.com/deppfellow/bctw-api/internal/model"
)

// Sender delivers one text message.
type Sender interface {
	Send(ctx context.Context, to, text string) error
}

type messageCreator interface {
	Create(params plivo.MessageCreateParams) (*plivo.MessageCreateResponseBody, error)
}

type Client struct {
	messages messageCreator
	from     string
	logger   *zerolog.Logger
}

// NewClient returns nil when no Plivo credentials are configured.
func NewClient(cfg *config.Config, logger *zerolog.Logger) (*Client, error) {
	if !cfg.Integration.SMSEnabled() {
		return nil, nil
	}

	client, err := plivo.NewClient(cfg.Integration.PlivoAuthID, cfg.Integration.PlivoAuthToken, &plivo.ClientOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create plivo client")
	}

	return &Client{messages: client.Messages, from: cfg.Integration.SMSFrom, logger: logger}, nil
}

func (c *Client) Send(ctx context.Context, to, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dst, err := NormalizePhone(to)
	if err != nil {
		return err
	}

	resp, err := c.messages.Create(plivo.MessageCreateParams{
		Src:  c.from,
		Dst:  dst,
		Text: text,
	})
	if err != nil {
		return errors.Wrap(err, "failed to send sms")
	}

	c.logger.Debug().Strs("message_uuid", resp.MessageUUID).Msg("sms sent")
	return nil
}

// NormalizePhone strips formatting from a North American number and returns
// it in E.164 form. Numbers already carrying a country code are kept as is.
func NormalizePhone(phone string) (string, error) {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)

	switch {
	case len(digits) == 10:
		return "+1" + digits, nil
	case len(digits) == 11 && digits[0] == '1':
		return "+" + digits, nil
	case strings.HasPrefix(strings.TrimSpace(phone), "+") && len(digits) > 7:
		return "+" + digits, nil
	}
	return "", fmt.Errorf("invalid phone number %q", phone)
}

// MortalityAlertText is the SMS body of a mortality alert.
func MortalityAlertText(ev model.MortalityAlertEvent) string {
	return fmt.Sprintf(
		"BCTW mortality alert for %s: animal %s (%s), device %d on %s MHz at %s. Last location %.5f, %.5f.",
		ev.FirstName, ev.AnimalID, ev.Species, ev.DeviceID, ev.Frequency.String(), ev.DateTime, ev.Latitude, ev.Longitude,
	)
}
