package mailer

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/jonathan/outreach-agent/internal/logging"
)

// DefaultTimeout bounds a single transport call.
const DefaultTimeout = 30 * time.Second

// GmailScope allows sending mail and reading the account profile.
const GmailScope = gmail.GmailComposeScope

// GmailOptions configures a GmailTransport.
type GmailOptions struct {
	CredentialsFile string
	TokenFile       string
	Timeout         time.Duration
	// Endpoint overrides the API base URL.
	Endpoint string
	// HTTPClient replaces the OAuth client built from the credential files.
	HTTPClient *http.Client
}

// GmailTransport sends through the Gmail API as the authorized user.
type GmailTransport struct {
	service *gmail.Service
	timeout time.Duration
}

// NewGmail creates a transport from an OAuth client and a stored token.
// Run AuthorizeGmail first to create the token file.
func NewGmail(ctx context.Context, opts GmailOptions) (*GmailTransport, error) {
	client := opts.HTTPClient
	if client == nil {
		cfg, err := oauthConfig(opts.CredentialsFile)
		if err != nil {
			return nil, err
		}
		token, err := readToken(opts.TokenFile)
		if err != nil {
			return nil, err
		}
		client = cfg.Client(ctx, token)
	}

	clientOpts := []option.ClientOption{option.WithHTTPClient(client)}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}
	service, err := gmail.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &GmailTransport{service: service, timeout: timeout}, nil
}

// Send uploads the raw message with users.messages.send.
func (t *GmailTransport) Send(ctx context.Context, msg *Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	raw, err := msg.Bytes()
	if err != nil {
		return "", &SendError{Transport: "gmail", Recipient: msg.To.Address, Message: "failed to encode message", Cause: err}
	}

	sent, err := t.service.Users.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}).Context(ctx).Do()
	if err != nil {
		return "", &SendError{Transport: "gmail", Recipient: msg.To.Address, Message: apiReason(err), Cause: err}
	}

	logging.Debug(ctx, "gmail accepted message", zap.String("id", sent.Id), zap.String("thread_id", sent.ThreadId))
	return sent.Id, nil
}

// Check returns the address of the authorized account.
func (t *GmailTransport) Check(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	profile, err := t.service.Users.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("gmail profile lookup failed: %s: %w", apiReason(err), err)
	}
	return profile.EmailAddress, nil
}

// apiReason prefers the message carried by a Google API error.
func apiReason(err error) string {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return fmt.Sprintf("HTTP %d", apiErr.Code)
	}
	return err.Error()
}

func oauthConfig(credentialsFile string) (*oauth2.Config, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read gmail credentials %s: %w", credentialsFile, err)
	}
	cfg, err := google.ConfigFromJSON(data, GmailScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse gmail credentials %s: %w", credentialsFile, err)
	}
	return cfg, nil
}

func readToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open gmail token %s (run gmail-auth first): %w", path, err)
	}
	defer f.Close()

	var token oauth2.Token
	if err := json.NewDecoder(f).Decode(&token); err != nil {
		return nil, fmt.Errorf("failed to decode gmail token %s: %w", path, err)
	}
	return &token, nil
}

func writeToken(path string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write gmail token %s: %w", path, err)
	}
	return nil
}

// AuthorizeGmail runs the interactive consent flow: it prints the consent URL
// to out, reads the authorization code from in and stores the token.
func AuthorizeGmail(ctx context.Context, credentialsFile, tokenFile string, in io.Reader, out io.Writer) error {
	cfg, err := oauthConfig(credentialsFile)
	if err != nil {
		return err
	}
	return authorize(ctx, cfg, tokenFile, in, out)
}

func authorize(ctx context.Context, cfg *oauth2.Config, tokenFile string, in io.Reader, out io.Writer) error {
	url := cfg.AuthCodeURL("outreach-agent", oauth2.AccessTypeOffline)
	fmt.Fprintf(out, "Open this URL in a browser and authorize access:\n\n%s\n\nPaste the authorization code: ", url)

	code, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read authorization code: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return errors.New("no authorization code entered")
	}

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	if err := writeToken(tokenFile, token); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nToken saved to %s\n", tokenFile)
	return nil
}
