package notify

import (
	"fmt"
	"net/smtp"
)

// Mailer delivers a rendered event.
type Mailer interface {
	Send(to, subject, body string) error
}

type SMTPMailer struct {
	from     string
	fromName string
	host     string
	port     string
	user     string
	pass     string
}

func NewSMTPMailer(from, fromName, host, port, user, pass string) *SMTPMailer {
	return &SMTPMailer{
		from:     from,
		fromName: fromName,
		host:     host,
		port:     port,
		user:     user,
		pass:     pass,
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", m.fromName, m.from)
	message += fmt.Sprintf("To: %s\r\n", to)
	message += fmt.Sprintf("Subject: %s\r\n", subject)
	message += "\r\n" + body

	var auth smtp.Auth
	if m.user != "" && m.pass != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}

	return smtp.SendMail(m.host+":"+m.port, auth, m.from, []string{to}, []byte(message))
}
