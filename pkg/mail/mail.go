package mail

import (
	"io"
	"math"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type Sender interface {
	Send(msg Message) error
}

// Message is one outbound report mail. Attachments are written lazily while
// the message is streamed to the server, so the workbook never hits disk.
type Message struct {
	To          []string
	Subject     string
	Body        string
	Attachments []Attachment
}

type Attachment struct {
	Filename string
	WriteTo  func(w io.Writer) error
}

type sender struct {
	dialer         *gomail.Dialer
	senderAddress  string
	log            *zap.SugaredLogger
	retryCount     int
	retryBackoffMs int
	send           func(msg *gomail.Message) error
}

type Options struct {
	Host           string
	Port           int
	From           string
	User           string
	Password       string
	RetryCount     int
	RetryBackoffMs int
}

func NewSender(opts Options, log *zap.SugaredLogger) Sender {
	d := gomail.NewDialer(opts.Host, opts.Port, opts.User, opts.Password)

	retryCount := opts.RetryCount
	if retryCount <= 0 {
		retryCount = 3
	}
	retryBackoffMs := opts.RetryBackoffMs
	if retryBackoffMs <= 0 {
		retryBackoffMs = 100
	}

	log.Infow("initializing mail sender",
		"host", opts.Host,
		"port", opts.Port,
		"user", opts.User,
		"retryCount", retryCount)

	s := &sender{
		dialer:         d,
		senderAddress:  opts.From,
		log:            log.Named("mail"),
		retryCount:     retryCount,
		retryBackoffMs: retryBackoffMs,
	}
	s.send = func(msg *gomail.Message) error { return s.dialer.DialAndSend(msg) }
	return s
}

func (s *sender) Send(msg Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderAddress)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.Body)
	for _, a := range msg.Attachments {
		m.Attach(a.Filename, gomail.SetCopyFunc(a.WriteTo))
	}

	var lastErr error
	backoffMs := s.retryBackoffMs
	for attempt := 0; attempt <= s.retryCount; attempt++ {
		err := s.send(m)
		if err == nil {
			s.log.Infow("mail sent", "receivers", len(msg.To), "attempt", attempt+1)
			return nil
		}
		lastErr = err
		if attempt < s.retryCount {
			s.log.Warnw("send attempt failed, retrying",
				"attempt", attempt+1, "backoffMs", backoffMs, "error", err)
			time.Sleep(time.Duration(backoffMs) * time.Millisecond)
			backoffMs = int(math.Min(float64(backoffMs)*2, 32000))
		}
	}
	s.log.Errorw("failed to send mail", "attempts", s.retryCount+1, "error", lastErr)
	return lastErr
}
