package notification

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/bher20/solarquote/internal/currency"
	"github.com/bher20/solarquote/internal/storage"
)

// ErrDisabled is returned when email has not been configured.
var ErrDisabled = errors.New("email not configured or disabled")

const sendgridHost = "https://api.sendgrid.com"

type Config struct {
	// Provider is "smtp", "gmail" or "sendgrid". Empty disables email.
	Provider    string
	Host        string
	Port        int
	Username    string
	Password    string
	Encryption  string // "ssl", "tls" or "" for plain
	FromAddress string
	FromName    string
	APIKey      string
	// SalesAddress receives lead notifications.
	SalesAddress string
	Currency     string

	// SendgridHost overrides the API host, for tests.
	SendgridHost string
}

func (c Config) Enabled() bool {
	return c.Provider != "" && c.FromAddress != ""
}

type Service struct {
	cfg Config
	log *zap.Logger
}

func NewService(cfg Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.SendgridHost == "" {
		cfg.SendgridHost = sendgridHost
	}
	return &Service{cfg: cfg, log: log.Named("notification")}
}

func (s *Service) SendEmail(ctx context.Context, to, subject, body string) error {
	if !s.cfg.Enabled() {
		return ErrDisabled
	}

	switch s.cfg.Provider {
	case "smtp", "gmail":
		return s.sendSMTP(ctx, to, subject, body)
	case "sendgrid":
		return s.sendSendgrid(ctx, to, subject, body)
	default:
		return fmt.Errorf("unknown provider: %s", s.cfg.Provider)
	}
}

// NotifyLead emails the sales address about a new lead. It is a no-op when
// email or the sales address is not configured.
func (s *Service) NotifyLead(ctx context.Context, lead storage.Lead) error {
	if !s.cfg.Enabled() || s.cfg.SalesAddress == "" {
		s.log.Debug("lead email disabled, skipping", zap.String("lead_id", lead.ID))
		return nil
	}
	subject, body, err := s.leadMessage(lead)
	if err != nil {
		return err
	}
	if err := s.SendEmail(ctx, s.cfg.SalesAddress, subject, body); err != nil {
		return fmt.Errorf("send lead email: %w", err)
	}
	s.log.Info("sent lead email", zap.String("lead_id", lead.ID))
	return nil
}

var leadTemplate = template.Must(template.New("lead").Parse(`<h2>New solar quote request</h2>
<table>
<tr><td>Name</td><td>{{.Lead.Name}}</td></tr>
<tr><td>Email</td><td>{{.Lead.Email}}</td></tr>
<tr><td>Phone</td><td>{{.Lead.Phone}}</td></tr>
<tr><td>Address</td><td>{{.Lead.Address}}, {{.Lead.City}}</td></tr>
<tr><td>System size</td><td>{{.Lead.SystemSizeKW}} kW ({{.Lead.PanelQuantity}} panels)</td></tr>
<tr><td>Total investment</td><td>{{.Investment}}</td></tr>
<tr><td>Monthly savings</td><td>{{.Savings}}</td></tr>
</table>
<p>Quote ID: {{.Lead.QuoteID}}</p>
`))

func (s *Service) leadMessage(lead storage.Lead) (string, string, error) {
	var buf bytes.Buffer
	err := leadTemplate.Execute(&buf, struct {
		Lead       storage.Lead
		Investment string
		Savings    string
	}{
		Lead:       lead,
		Investment: currency.MustFormat(lead.TotalInvestment, s.cfg.Currency),
		Savings:    currency.MustFormat(lead.MonthlySavings, s.cfg.Currency),
	})
	if err != nil {
		return "", "", fmt.Errorf("render lead email: %w", err)
	}
	name := lead.Name
	if name == "" {
		name = "unnamed customer"
	}
	return fmt.Sprintf("New solar lead: %s (%g kW)", headerBreaks.Replace(name), lead.SystemSizeKW), buf.String(), nil
}

// smtpTimeout bounds an SMTP exchange when ctx carries no deadline.
const smtpTimeout = 30 * time.Second

var headerBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// headerValue folds CR and LF out of v so caller data cannot start new
// header lines, then Q-encodes it when it is not plain ASCII.
func headerValue(v string) string {
	return mime.QEncoding.Encode("utf-8", headerBreaks.Replace(v))
}

func (s *Service) message(to, subject, body string) []byte {
	return []byte(fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/html; charset=\"UTF-8\"\r\n"+
		"\r\n"+
		"%s\r\n", headerValue(s.cfg.FromAddress), headerValue(to), headerValue(subject), body))
}

func (s *Service) sendSMTP(ctx context.Context, to, subject, body string) error {
	cfg := s.cfg
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	msg := s.message(to, subject, body)

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, smtpTimeout)
		defer cancel()
	}
	deadline, _ := ctx.Deadline()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := conn.SetDeadline(deadline); err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if cfg.Encryption == "ssl" {
		// Implicit TLS
		conn = tls.Client(conn, &tls.Config{ServerName: cfg.Host})
	}

	c, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		return err
	}
	defer c.Close()

	if cfg.Encryption == "tls" {
		// STARTTLS
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: cfg.Host}); err != nil {
				return err
			}
		}
	}
	if err := s.deliver(c, to, msg); err != nil {
		return err
	}
	return c.Quit()
}

func (s *Service) deliver(c *smtp.Client, to string, msg []byte) error {
	cfg := s.cfg
	if cfg.Username != "" && cfg.Password != "" {
		if err := c.Auth(smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)); err != nil {
			return err
		}
	}
	if err := c.Mail(cfg.FromAddress); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	return w.Close()
}

func (s *Service) sendSendgrid(ctx context.Context, to, subject, body string) error {
	from := mail.NewEmail(s.cfg.FromName, s.cfg.FromAddress)
	message := mail.NewSingleEmail(from, subject, mail.NewEmail("", to), body, body)

	request := sendgrid.GetRequest(s.cfg.APIKey, "/v3/mail/send", s.cfg.SendgridHost)
	request.Method = "POST"
	request.Body = mail.GetRequestBody(message)

	resp, err := sendgrid.MakeRequestWithContext(ctx, request)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: %d %s", resp.StatusCode, resp.Body)
	}
	return nil
}
