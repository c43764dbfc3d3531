// Package email sends notification emails through Resend. Bodies are
// rendered from HTML templates embedded in the binary.
package email

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"

	"github.com/deppfellow/bctw-api/internal/config"
)

const senderName = "BC Telemetry Warehouse"

type sender interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type Client struct {
	emails sender
	from   string
	logger *zerolog.Logger
}

func NewClient(cfg *config.Config, logger *zerolog.Logger) *Client {
	return &Client{
		emails: resend.NewClient(cfg.Integration.ResendAPIKey).Emails,
		from:   fmt.Sprintf("%s <%s>", senderName, cfg.Integration.EmailFrom),
		logger: logger,
	}
}

// SendEmail renders templateName with data and sends it to one recipient.
func (c *Client) SendEmail(to, subject string, templateName Template, data map[string]string) error {
	body, err := Render(templateName, data)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	}

	sent, err := c.emails.Send(params)
	if err != nil {
		return errors.Wrapf(err, "failed to send %s email", templateName)
	}

	c.logger.Debug().
		Str("template", string(templateName)).
		Str("email_id", sent.Id).
		Msg("email sent")
	return nil
}
