package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

// SMTP connection security modes.
const (
	SecurityStartTLS = "starttls"
	SecurityTLS      = "tls"
	SecurityNone     = "none"
)

// SMTPOptions configures an SMTPTransport.
type SMTPOptions struct {
	Addr     string
	Username string
	Password string
	Security string
	Timeout  time.Duration
}

// SMTPTransport sends through an authenticated SMTP relay.
type SMTPTransport struct {
	opts SMTPOptions
}

// NewSMTP creates an SMTP transport.
func NewSMTP(opts SMTPOptions) *SMTPTransport {
	if opts.Security == "" {
		opts.Security = SecurityStartTLS
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &SMTPTransport{opts: opts}
}

// Send delivers msg and returns its Message-ID.
func (t *SMTPTransport) Send(ctx context.Context, msg *Message) (string, error) {
	fail := func(reason string, err error) (string, error) {
		return "", &SendError{Transport: "smtp", Recipient: msg.To.Address, Message: fmt.Sprintf("%s: %v", reason, err), Cause: err}
	}

	raw, err := msg.Bytes()
	if err != nil {
		return fail("encode", err)
	}

	c, err := t.connect(ctx)
	if err != nil {
		return fail("connect", err)
	}
	defer c.Close()

	if err := c.SendMail(msg.From.Address, []string{msg.To.Address}, bytes.NewReader(raw)); err != nil {
		return fail("deliver", err)
	}
	if err := c.Quit(); err != nil {
		return fail("quit", err)
	}
	return msg.ID, nil
}

// Check authenticates against the relay and returns the username.
func (t *SMTPTransport) Check(ctx context.Context) (string, error) {
	c, err := t.connect(ctx)
	if err != nil {
		return "", fmt.Errorf("smtp check failed: %w", err)
	}
	defer c.Close()

	if err := c.Noop(); err != nil {
		return "", fmt.Errorf("smtp check failed: %w", err)
	}
	if err := c.Quit(); err != nil {
		return "", fmt.Errorf("smtp check failed: %w", err)
	}
	return t.opts.Username, nil
}

// connect dials, secures and authenticates a client bounded by the timeout.
func (t *SMTPTransport) connect(ctx context.Context) (*smtp.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, t.opts.Timeout)
	defer cancel()

	host, _, err := net.SplitHostPort(t.opts.Addr)
	if err != nil {
		return nil, err
	}
	tlsConfig := &tls.Config{ServerName: host}

	dialer := &net.Dialer{}
	var conn net.Conn
	if t.opts.Security == SecurityTLS {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: tlsConfig}).DialContext(ctx, "tcp", t.opts.Addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", t.opts.Addr)
	}
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c := smtp.NewClient(conn)
	if t.opts.Security == SecurityStartTLS {
		if err := c.StartTLS(tlsConfig); err != nil {
			c.Close()
			return nil, err
		}
	}
	if t.opts.Username != "" {
		if err := c.Auth(sasl.NewPlainClient("", t.opts.Username, t.opts.Password)); err != nil {
			c.Close()
			return nil, err
		}
	}
	return c, nil
}
