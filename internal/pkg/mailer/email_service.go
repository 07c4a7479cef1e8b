package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendSessionCode(toEmail, name, code string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
}

func NewEmailService(host string, port int, username, password, senderName string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: username,
		senderName:  senderName,
	}
}

// SendSessionCode mails Partner A their session code so they can log
// back in with code + PIN after closing the app.
func (s *emailService) SendSessionCode(toEmail, name, code string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Your Mediation Session Code")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Hi %s,</h2>
			<p>Your private mediation session has been created. Keep this code safe:</p>
			<h1 style="color: #2563EB; letter-spacing: 5px;">%s</h1>
			<p>Share the code with your partner when you are ready to invite them.</p>
			<p>You can log back in anytime with this code and your PIN.</p>
		</div>
	`, name, code)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send session code to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Session code sent to %s\n", toEmail)
	return nil
}
