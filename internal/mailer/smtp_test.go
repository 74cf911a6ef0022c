package mailer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"testing"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/outreach-agent/internal/types"
)

type delivery struct {
	from string
	to   []string
	data []byte
}

type recordingBackend struct {
	mu         sync.Mutex
	deliveries []delivery
	username   string
	password   string
}

func (b *recordingBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &recordingSession{backend: b}, nil
}

func (b *recordingBackend) received() []delivery {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]delivery(nil), b.deliveries...)
}

type recordingSession struct {
	backend *recordingBackend
	current delivery
}

func (s *recordingSession) AuthMechanisms() []string {
	return []string{sasl.Plain}
}

func (s *recordingSession) Auth(string) (sasl.Server, error) {
	return sasl.NewPlainServer(func(_, username, password string) error {
		if username != s.backend.username || password != s.backend.password {
			return errors.New("invalid credentials")
		}
		return nil
	}), nil
}

func (s *recordingSession) Mail(from string, _ *smtp.MailOptions) error {
	s.current.from = from
	return nil
}

func (s *recordingSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.current.to = append(s.current.to, to)
	return nil
}

func (s *recordingSession) Data(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.current.data = data
	s.backend.mu.Lock()
	s.backend.deliveries = append(s.backend.deliveries, s.current)
	s.backend.mu.Unlock()
	return nil
}

func (s *recordingSession) Reset() {
	s.current = delivery{}
}

func (s *recordingSession) Logout() error {
	return nil
}

func startSMTPServer(t *testing.T) (*recordingBackend, string) {
	t.Helper()
	backend := &recordingBackend{username: "asha@example.com", password: "app-password"}

	server := smtp.NewServer(backend)
	server.Domain = "localhost"
	server.AllowInsecureAuth = true

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = server.Serve(listener) }()
	t.Cleanup(func() { _ = server.Close() })

	return backend, listener.Addr().String()
}

func TestSMTPTransport_Send(t *testing.T) {
	backend, addr := startSMTPServer(t)
	transport := NewSMTP(SMTPOptions{
		Addr:     addr,
		Username: "asha@example.com",
		Password: "app-password",
		Security: SecurityNone,
	})

	msg, err := Compose(testSender, types.OutgoingEmail{Email: "hr@paytm.com", Subject: "Hello", Body: "Body text"}, false)
	require.NoError(t, err)

	id, err := transport.Send(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, msg.ID, id)

	got := backend.received()
	require.Len(t, got, 1)
	assert.Equal(t, "asha@example.com", got[0].from)
	assert.Equal(t, []string{"hr@paytm.com"}, got[0].to)
	assert.True(t, bytes.Contains(got[0].data, []byte("Subject: Hello")))
}

func TestSMTPTransport_BadCredentials(t *testing.T) {
	backend, addr := startSMTPServer(t)
	transport := NewSMTP(SMTPOptions{
		Addr:     addr,
		Username: "asha@example.com",
		Password: "wrong",
		Security: SecurityNone,
	})

	msg, err := Compose(testSender, types.OutgoingEmail{Email: "hr@paytm.com", Subject: "Hello", Body: "Body"}, false)
	require.NoError(t, err)

	_, err = transport.Send(context.Background(), msg)
	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)
	assert.Contains(t, sendErr.Message, "connect")
	assert.Empty(t, backend.received())
}

func TestSMTPTransport_Check(t *testing.T) {
	_, addr := startSMTPServer(t)
	transport := NewSMTP(SMTPOptions{
		Addr:     addr,
		Username: "asha@example.com",
		Password: "app-password",
		Security: SecurityNone,
	})

	account, err := transport.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", account)
}

func TestSMTPTransport_Unreachable(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	transport := NewSMTP(SMTPOptions{Addr: addr, Security: SecurityNone})
	_, err = transport.Check(context.Background())
	assert.Error(t, err)
}
