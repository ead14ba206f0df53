package notification

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bher20/solarquote/internal/storage"
)

func lead() storage.Lead {
	return storage.Lead{
		ID:              "lead-1",
		Name:            "Bilal <script>",
		Email:           "bilal@example.com",
		City:            "Karachi",
		QuoteID:         "q-1",
		SystemSizeKW:    5,
		PanelQuantity:   9,
		TotalInvestment: 575000,
		MonthlySavings:  10000,
	}
}

func TestSendEmail_Disabled(t *testing.T) {
	s := NewService(Config{}, nil)
	assert.ErrorIs(t, s.SendEmail(context.Background(), "a@b.c", "hi", "body"), ErrDisabled)
	assert.NoError(t, s.NotifyLead(context.Background(), lead()))
}

func TestSendEmail_UnknownProvider(t *testing.T) {
	s := NewService(Config{Provider: "carrier-pigeon", FromAddress: "q@solar.test"}, nil)
	assert.EqualError(t, s.SendEmail(context.Background(), "a@b.c", "hi", "body"), "unknown provider: carrier-pigeon")
}

func TestLeadMessage_EscapesAndFormats(t *testing.T) {
	s := NewService(Config{Currency: "PKR"}, nil)
	subject, body, err := s.leadMessage(lead())
	require.NoError(t, err)
	assert.Equal(t, "New solar lead: Bilal <script> (5 kW)", subject)
	assert.Contains(t, body, "Bilal &lt;script&gt;")
	assert.Contains(t, body, "575,000")
	assert.Contains(t, body, "q-1")
}

func TestNotifyLead_Sendgrid(t *testing.T) {
	var got map[string]any
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		auth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s := NewService(Config{
		Provider:     "sendgrid",
		APIKey:       "SG.test",
		FromAddress:  "quotes@solar.test",
		FromName:     "Solar Quotes",
		SalesAddress: "sales@solar.test",
		SendgridHost: srv.URL,
	}, nil)

	require.NoError(t, s.NotifyLead(context.Background(), lead()))
	assert.Equal(t, "Bearer SG.test", auth)
	assert.Contains(t, got["subject"], "New solar lead")
}

func TestNotifyLead_SendgridFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer srv.Close()

	s := NewService(Config{
		Provider:     "sendgrid",
		FromAddress:  "quotes@solar.test",
		SalesAddress: "sales@solar.test",
		SendgridHost: srv.URL,
	}, nil)

	err := s.NotifyLead(context.Background(), lead())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sendgrid error: 401")
}

func TestLeadMessage_StripsHeaderBreaks(t *testing.T) {
	s := NewService(Config{FromAddress: "quotes@solar.test"}, nil)
	l := lead()
	l.Name = "Eve\r\nBcc: victim@evil.test"

	subject, body, err := s.leadMessage(l)
	require.NoError(t, err)
	assert.NotContains(t, subject, "\r")
	assert.NotContains(t, subject, "\n")

	msg := string(s.message("sales@solar.test", subject, body))
	header := msg[:strings.Index(msg, "\r\n\r\n")]
	for _, line := range strings.Split(header, "\r\n") {
		assert.False(t, strings.HasPrefix(line, "Bcc:"), line)
	}
	assert.Contains(t, header, "Subject: New solar lead: Eve Bcc: victim@evil.test (5 kW)")
}

func TestHeaderValue_EncodesNonASCII(t *testing.T) {
	assert.Equal(t, "plain", headerValue("plain"))
	assert.True(t, strings.HasPrefix(headerValue("Zoë\nX"), "=?utf-8?q?"))
}

// fakeSMTP accepts one session, answers the minimal command set and hands
// back the DATA payload.
func fakeSMTP(t *testing.T) (string, <-chan string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	data := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		tp := textproto.NewConn(conn)
		_ = tp.PrintfLine("220 fake ready")
		for {
			line, err := tp.ReadLine()
			if err != nil {
				return
			}
			switch cmd := strings.ToUpper(strings.SplitN(line, " ", 2)[0]); cmd {
			case "EHLO", "HELO":
				_ = tp.PrintfLine("250 fake")
			case "MAIL", "RCPT", "RSET", "NOOP":
				_ = tp.PrintfLine("250 ok")
			case "DATA":
				_ = tp.PrintfLine("354 go ahead")
				raw, err := tp.ReadDotBytes()
				if err != nil {
					return
				}
				data <- string(raw)
				_ = tp.PrintfLine("250 queued")
			case "QUIT":
				_ = tp.PrintfLine("221 bye")
				return
			default:
				_ = tp.PrintfLine("502 unsupported")
			}
		}
	}()
	return ln.Addr().String(), data
}

func smtpConfig(t *testing.T, addr string) Config {
	t.Helper()
	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	p, err := strconv.Atoi(port)
	require.NoError(t, err)
	return Config{
		Provider:     "smtp",
		Host:         host,
		Port:         p,
		FromAddress:  "quotes@solar.test",
		SalesAddress: "sales@solar.test",
		Currency:     "PKR",
	}
}

func TestNotifyLead_SMTP(t *testing.T) {
	addr, data := fakeSMTP(t)
	s := NewService(smtpConfig(t, addr), nil)

	require.NoError(t, s.NotifyLead(context.Background(), lead()))
	select {
	case got := <-data:
		assert.Contains(t, got, "Subject: New solar lead: Bilal <script> (5 kW)")
		assert.Contains(t, got, "575,000")
	case <-time.After(5 * time.Second):
		t.Fatal("no message delivered")
	}
}

func TestSendEmail_SMTPHonorsContext(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	held := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			held <- conn
		}
	}()
	defer func() {
		select {
		case c := <-held:
			c.Close()
		default:
		}
	}()

	s := NewService(smtpConfig(t, ln.Addr().String()), nil)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = s.SendEmail(ctx, "sales@solar.test", "hi", "body")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}
