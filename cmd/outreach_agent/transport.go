package main

import (
	"context"
	"fmt"

	"github.com/jonathan/outreach-agent/internal/config"
	"github.com/jonathan/outreach-agent/internal/mailer"
)

// newTransport builds the configured mail transport.
func newTransport(ctx context.Context) (mailer.Transport, error) {
	switch cfg.Mail.Transport {
	case config.TransportSMTP:
		return mailer.NewSMTP(mailer.SMTPOptions{
			Addr:     cfg.Mail.SMTPAddr,
			Username: cfg.Mail.SMTPUsername,
			Password: cfg.Mail.SMTPPassword,
			Security: cfg.Mail.SMTPSecurity,
			Timeout:  cfg.Mail.Timeout,
		}), nil
	case config.TransportGmail, "":
		return mailer.NewGmail(ctx, mailer.GmailOptions{
			CredentialsFile: cfg.Mail.CredentialsFile,
			TokenFile:       cfg.Mail.TokenFile,
			Timeout:         cfg.Mail.Timeout,
		})
	default:
		return nil, fmt.Errorf("unknown mail transport %q", cfg.Mail.Transport)
	}
}
