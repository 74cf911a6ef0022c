package mailer

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/jonathan/outreach-agent/internal/types"
)

func newGmailServer(t *testing.T, handler http.HandlerFunc) *GmailTransport {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	transport, err := NewGmail(context.Background(), GmailOptions{
		Endpoint:   server.URL + "/",
		HTTPClient: server.Client(),
	})
	require.NoError(t, err)
	return transport
}

func TestGmailTransport_Send(t *testing.T) {
	var raw string
	transport := newGmailServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/gmail/v1/users/me/messages/send", r.URL.Path)

		var body struct {
			Raw string `json:"raw"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		decoded, err := base64.URLEncoding.DecodeString(body.Raw)
		require.NoError(t, err)
		raw = string(decoded)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg-123","threadId":"thread-1"}`))
	})

	msg, err := Compose(testSender, types.OutgoingEmail{Email: "hr@paytm.com", Subject: "Hello", Body: "Body"}, false)
	require.NoError(t, err)

	id, err := transport.Send(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, "msg-123", id)
	assert.Contains(t, raw, "Subject: Hello")
	assert.Contains(t, raw, "To: hr@paytm.com")
}

func TestGmailTransport_SendAPIError(t *testing.T) {
	transport := newGmailServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"Insufficient Permission"}}`))
	})

	msg, err := Compose(testSender, types.OutgoingEmail{Email: "hr@paytm.com", Subject: "Hello", Body: "Body"}, false)
	require.NoError(t, err)

	_, err = transport.Send(context.Background(), msg)
	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)
	assert.Equal(t, "Insufficient Permission", sendErr.Message)
	assert.Equal(t, "hr@paytm.com", sendErr.Recipient)
}

func TestGmailTransport_Check(t *testing.T) {
	transport := newGmailServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/gmail/v1/users/me/profile", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"emailAddress":"asha@example.com","messagesTotal":10}`))
	})

	account, err := transport.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", account)
}

func TestNewGmail_MissingCredentials(t *testing.T) {
	_, err := NewGmail(context.Background(), GmailOptions{
		CredentialsFile: filepath.Join(t.TempDir(), "missing.json"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read gmail credentials")
}

func TestAuthorize(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"access","token_type":"Bearer","refresh_token":"refresh","expires_in":3600}`))
	}))
	defer tokenServer.Close()

	cfg := &oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		Endpoint:     oauth2.Endpoint{AuthURL: tokenServer.URL + "/auth", TokenURL: tokenServer.URL + "/token"},
		Scopes:       []string{GmailScope},
	}
	tokenFile := filepath.Join(t.TempDir(), "token.json")
	var out strings.Builder

	err := authorize(context.Background(), cfg, tokenFile, strings.NewReader("the-code\n"), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), tokenServer.URL+"/auth")

	token, err := readToken(tokenFile)
	require.NoError(t, err)
	assert.Equal(t, "access", token.AccessToken)
	assert.Equal(t, "refresh", token.RefreshToken)

	info, err := os.Stat(tokenFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestAuthorize_EmptyCode(t *testing.T) {
	cfg := &oauth2.Config{Endpoint: oauth2.Endpoint{AuthURL: "https://example.com/auth"}}
	err := authorize(context.Background(), cfg, filepath.Join(t.TempDir(), "t.json"), strings.NewReader("\n"), &strings.Builder{})
	assert.EqualError(t, err, "no authorization code entered")
}
