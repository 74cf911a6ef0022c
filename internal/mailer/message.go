// Package mailer builds outreach messages and delivers them through the
// Gmail API or an SMTP relay.
package mailer

import (
	"bytes"
	"fmt"
	"html"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/textproto"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/jonathan/outreach-agent/internal/types"
)

// ClientID is sent in the X-Mailer header of every message.
const ClientID = "outreach-agent"

var markupPattern = regexp.MustCompile(`(?i)<\s*(html|body|p|br|div|table|span|a|ul|ol|h[1-6])[\s/>]`)

// Message is a fully composed outreach email.
type Message struct {
	ID      string
	From    mail.Address
	To      mail.Address
	ReplyTo mail.Address
	Subject string
	Date    time.Time
	Text    string
	// HTML is empty for plain-text messages.
	HTML string
}

// AddressError reports a recipient that cannot be parsed.
type AddressError struct {
	Address string
	Cause   error
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("invalid recipient address %q: %v", e.Address, e.Cause)
}

func (e *AddressError) Unwrap() error {
	return e.Cause
}

// Compose builds the message for one outgoing row. In HTML mode the body is
// converted to markup unless it already is markup, in which case the plain
// part is derived from it.
func Compose(sender types.SenderProfile, out types.OutgoingEmail, htmlMode bool) (*Message, error) {
	to, err := mail.ParseAddress(strings.TrimSpace(out.Email))
	if err != nil {
		return nil, &AddressError{Address: out.Email, Cause: err}
	}
	to.Name = strings.TrimSpace(out.Name)

	from := mail.Address{Name: sender.Name, Address: sender.Email}
	msg := &Message{
		ID:      newMessageID(sender.Email),
		From:    from,
		To:      *to,
		ReplyTo: from,
		Subject: out.Subject,
		Date:    time.Now(),
		Text:    out.Body,
	}

	if htmlMode {
		if IsMarkup(out.Body) {
			msg.HTML = out.Body
			msg.Text = HTMLToText(out.Body)
		} else {
			msg.HTML = HTMLFromText(out.Body)
		}
	}
	return msg, nil
}

func newMessageID(senderEmail string) string {
	domain := "localhost"
	if at := strings.LastIndex(senderEmail, "@"); at >= 0 && at < len(senderEmail)-1 {
		domain = senderEmail[at+1:]
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
}

// IsMarkup reports whether body already contains HTML.
func IsMarkup(body string) bool {
	return markupPattern.MatchString(body)
}

// HTMLFromText turns blank-line separated paragraphs into <p> blocks and
// single line breaks into <br>.
func HTMLFromText(text string) string {
	text = strings.ReplaceAll(strings.TrimSpace(text), "\r\n", "\n")
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(html.EscapeString(para), "\n", "<br>"))
		b.WriteString("</p>")
	}
	b.WriteString("</body></html>")
	return b.String()
}

// HTMLToText extracts readable text from markup, keeping paragraph and
// line breaks.
func HTMLToText(markup string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return markup
	}
	doc.Find("br").ReplaceWithHtml("\n")

	var paras []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			paras = append(paras, text)
		}
	})
	if len(paras) == 0 {
		return strings.TrimSpace(doc.Find("body").Text())
	}
	return strings.Join(paras, "\n\n")
}

func formatAddress(a mail.Address) string {
	if a.Name == "" {
		return a.Address
	}
	return a.String()
}

// Bytes renders the message in RFC 5322 form with a multipart/alternative body.
func (m *Message) Bytes() ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := writePart(mw, "text/plain", m.Text); err != nil {
		return nil, err
	}
	if m.HTML != "" {
		if err := writePart(mw, "text/html", m.HTML); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	header := func(name, value string) {
		fmt.Fprintf(&buf, "%s: %s\r\n", name, value)
	}
	header("From", formatAddress(m.From))
	header("To", formatAddress(m.To))
	header("Reply-To", formatAddress(m.ReplyTo))
	header("Subject", mime.QEncoding.Encode("utf-8", m.Subject))
	header("Date", m.Date.Format(time.RFC1123Z))
	header("Message-ID", m.ID)
	header("X-Mailer", ClientID)
	header("MIME-Version", "1.0")
	header("Content-Type", fmt.Sprintf("multipart/alternative; boundary=%q", mw.Boundary()))
	buf.WriteString("\r\n")
	buf.Write(body.Bytes())

	return buf.Bytes(), nil
}

func writePart(mw *multipart.Writer, contentType, content string) error {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", contentType+`; charset="utf-8"`)
	h.Set("Content-Transfer-Encoding", "quoted-printable")
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	qp := quotedprintable.NewWriter(part)
	if _, err := qp.Write([]byte(content)); err != nil {
		return err
	}
	return qp.Close()
}
