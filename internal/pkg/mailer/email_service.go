// FILE: internal/pkg/mailer/email_service.go
package mailer

import (
	"fmt"
	"os"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendGenerationComplete(toEmail, subject, testTitle string, questionCount int) error
	SendArtifactShare(toEmail, displayName, subject string, questionCount int, hasSolution bool) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	clientURL   string // Added to construct links
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	// Get Client URL from ENV or default to a safe placeholder
	clientURL := os.Getenv("CLIENT_URL")

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		clientURL:   clientURL,
	}
}

func (s *emailService) SendGenerationComplete(toEmail, subject, testTitle string, questionCount int) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Your Exam Package Is Ready")

	archiveLink := fmt.Sprintf("%s/archive", s.clientURL)

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Exam Package Complete</h2>
			<p>The answer key for <strong>%s</strong> has finished generating.</p>
			<ul>
				<li>Subject: %s</li>
				<li>Questions: %d</li>
			</ul>
			<a href="%s" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Open Your Session</a>
			<p>Remember to save the test to your archive if you haven't.</p>
		</div>
	`, testTitle, subject, questionCount, archiveLink)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send completion mail to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Completion mail sent to %s\n", toEmail)
	return nil
}

func (s *emailService) SendArtifactShare(toEmail, displayName, subject string, questionCount int, hasSolution bool) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("A test was shared with you: %s", displayName))

	solutionNote := "This package does not include an answer key."
	if hasSolution {
		solutionNote = "An answer key is included."
	}

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>%s</h2>
			<p>A colleague shared a generated test with you.</p>
			<ul>
				<li>Subject: %s</li>
				<li>Questions: %d</li>
			</ul>
			<p>%s</p>
		</div>
	`, displayName, subject, questionCount, solutionNote)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send share mail to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Share mail sent to %s\n", toEmail)
	return nil
}
