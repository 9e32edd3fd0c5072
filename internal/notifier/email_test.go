package notifier

import (
	"encoding/base64"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net"
	"net/mail"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/thatguy-hiparh/jobscout/internal/config"
	"github.com/thatguy-hiparh/jobscout/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// smtpSession captures what one client delivered to the fake server.
type smtpSession struct {
	from  string
	rcpts []string
	auth  string // raw AUTH argument, empty when the client skipped auth
	data  []byte
}

// fakeSMTPServer speaks just enough SMTP for net/smtp to complete a
// delivery. It serves a single connection and reports the session on
// the returned channel after QUIT. With advertiseAuth the EHLO reply
// offers AUTH PLAIN; STARTTLS is never offered so the exchange stays
// in plain text.
func fakeSMTPServer(t *testing.T, advertiseAuth bool) (host string, port int, sessions <-chan *smtpSession) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	ch := make(chan *smtpSession, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		sess := &smtpSession{}
		tc := textproto.NewConn(conn)
		tc.PrintfLine("220 fake.test ESMTP ready")
		for {
			line, err := tc.ReadLine()
			if err != nil {
				return
			}
			verb := strings.ToUpper(line)
			switch {
			case strings.HasPrefix(verb, "EHLO"), strings.HasPrefix(verb, "HELO"):
				if advertiseAuth {
					tc.PrintfLine("250-fake.test")
					tc.PrintfLine("250 AUTH PLAIN")
				} else {
					tc.PrintfLine("250 fake.test")
				}
			case strings.HasPrefix(verb, "AUTH "):
				sess.auth = line[len("AUTH "):]
				tc.PrintfLine("235 authentication successful")
			case strings.HasPrefix(verb, "MAIL FROM:"):
				sess.from = strings.Trim(line[len("MAIL FROM:"):], "<>")
				tc.PrintfLine("250 OK")
			case strings.HasPrefix(verb, "RCPT TO:"):
				sess.rcpts = append(sess.rcpts, strings.Trim(line[len("RCPT TO:"):], "<>"))
				tc.PrintfLine("250 OK")
			case verb == "DATA":
				tc.PrintfLine("354 end with <CR><LF>.<CR><LF>")
				sess.data, _ = io.ReadAll(tc.DotReader())
				tc.PrintfLine("250 accepted")
			case verb == "QUIT":
				tc.PrintfLine("221 bye")
				ch <- sess
				return
			default:
				tc.PrintfLine("250 OK")
			}
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return "127.0.0.1", addr.Port, ch
}

func emailConfig(host string, port int) config.EmailConfig {
	return config.EmailConfig{
		Enabled: true,
		Host:    host,
		Port:    port,
		From:    "scout@example.com",
		To:      []string{"dev@example.com", "lead@example.com"},
		Subject: "Job Scout — Daily Report",
	}
}

func TestEmailNotifier_Notify_deliversToAllRecipients(t *testing.T) {
	host, port, sessions := fakeSMTPServer(t, false)
	n := NewEmailNotifier(emailConfig(host, port), discardLogger())

	msg := Message{
		Subject: "Job Scout — Daily Report",
		Text:    "New postings: 1\n\n* Audio Engineer\n",
		HTML:    []byte("<html><body><h1>Job Scout</h1></body></html>"),
		Jobs:    []model.Job{{Title: "Audio Engineer", URL: "https://example.com/1", ExternalID: "1"}},
	}
	if err := n.Notify(msg); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	var sess *smtpSession
	select {
	case sess = <-sessions:
	case <-time.After(2 * time.Second):
		t.Fatal("server never saw a complete session")
	}

	if sess.from != "scout@example.com" {
		t.Errorf("mail from = %q, want scout@example.com", sess.from)
	}
	if len(sess.rcpts) != 2 || sess.rcpts[0] != "dev@example.com" || sess.rcpts[1] != "lead@example.com" {
		t.Errorf("rcpts = %v, want both configured recipients", sess.rcpts)
	}
	if sess.auth != "" {
		t.Errorf("client authenticated against a server that never offered AUTH: %q", sess.auth)
	}

	parsed, err := mail.ReadMessage(strings.NewReader(string(sess.data)))
	if err != nil {
		t.Fatalf("parse delivered message: %v", err)
	}
	subject, err := new(mime.WordDecoder).DecodeHeader(parsed.Header.Get("Subject"))
	if err != nil {
		t.Fatalf("decode subject: %v", err)
	}
	if subject != "Job Scout — Daily Report" {
		t.Errorf("subject = %q", subject)
	}
	mediaType, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	if err != nil {
		t.Fatalf("parse content type: %v", err)
	}
	if mediaType != "multipart/alternative" {
		t.Errorf("content type = %q, want multipart/alternative", mediaType)
	}

	mr := multipart.NewReader(parsed.Body, params["boundary"])
	var types []string
	var bodies []string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("read part: %v", err)
		}
		body, _ := io.ReadAll(p)
		types = append(types, p.Header.Get("Content-Type"))
		bodies = append(bodies, string(body))
	}
	if len(types) != 2 {
		t.Fatalf("message has %d parts, want 2 (text + html)", len(types))
	}
	if !strings.HasPrefix(types[0], "text/plain") || !strings.HasPrefix(types[1], "text/html") {
		t.Errorf("part types = %v, want text/plain then text/html", types)
	}
	if !strings.Contains(bodies[0], "Audio Engineer") {
		t.Errorf("text part missing digest content: %q", bodies[0])
	}
	if !strings.Contains(bodies[1], "<h1>Job Scout</h1>") {
		t.Errorf("html part missing report content: %q", bodies[1])
	}
}

func TestEmailNotifier_Notify_authenticatesWhenOffered(t *testing.T) {
	host, port, sessions := fakeSMTPServer(t, true)
	cfg := emailConfig(host, port)
	cfg.Username = "scout@example.com"
	cfg.Password = "s3cret"
	n := NewEmailNotifier(cfg, discardLogger())

	if err := n.Notify(Message{Subject: "hi", Text: "x", HTML: []byte("<p>x</p>")}); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	sess := <-sessions
	fields := strings.Fields(sess.auth)
	if len(fields) != 2 || fields[0] != "PLAIN" {
		t.Fatalf("auth = %q, want AUTH PLAIN with payload", sess.auth)
	}
	raw, err := base64.StdEncoding.DecodeString(fields[1])
	if err != nil {
		t.Fatalf("decode auth payload: %v", err)
	}
	parts := strings.Split(string(raw), "\x00")
	if len(parts) != 3 || parts[1] != "scout@example.com" || parts[2] != "s3cret" {
		t.Errorf("auth identity = %q, want configured credentials", raw)
	}
}

func TestEmailNotifier_Notify_connectionRefused(t *testing.T) {
	// Grab a port and close it again so nothing is listening there.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	n := NewEmailNotifier(emailConfig("127.0.0.1", port), discardLogger())
	err = n.Notify(Message{Subject: "hi", Text: "x", HTML: []byte("<p>x</p>")})
	if err == nil {
		t.Fatal("expected an error with no server listening")
	}
	if !strings.Contains(err.Error(), "dial smtp") {
		t.Errorf("err = %v, want a dial failure", err)
	}
}
