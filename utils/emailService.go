package utils

import (
	"examly/config"
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// SendEmail sends an HTML email through the configured SMTP account.
// A missing sender configuration turns this into a no-op so local
// setups work without mail credentials.
func SendEmail(to []string, subject string, htmlBody string) error {
	smtpHost := "smtp.gmail.com"
	smtpPort := "587"

	from := config.AppConfig.EmailSender
	password := config.AppConfig.Password
	if from == "" || password == "" {
		log.Println("Email sender not configured, skipping email:", subject)
		return nil
	}

	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: Examly <%s>\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", from, password, smtpHost)

	if err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, to, []byte(msg)); err != nil {
		log.Printf("Error sending email: %v", err)
		return err
	}
	return nil
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #1A237E; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; }
			.content { padding: 40px 30px; color: #1A237E; line-height: 1.6; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>%s</h1></div>
			<div class="content">%s</div>
			<div class="footer">This is an automated message from Examly.</div>
		</div>
	</body>
	</html>`, title, bodyContent)
}

// SendResultAvailableEmail notifies a student that their exam result is
// ready.
func SendResultAvailableEmail(to, studentName, examTitle string, totalPoints, maxPoints, percentage float64) error {
	body := fmt.Sprintf(
		"<h2>Hello %s,</h2><p>Your result for <b>%s</b> is available:</p><p><b>%.2f / %.2f points (%.2f%%)</b></p>",
		studentName, examTitle, totalPoints, maxPoints, percentage,
	)
	return SendEmail([]string{to}, "Your exam result is available", getEmailTemplate("Result Available", body))
}

// SendPendingCorrectionEmail notifies an instructor that essay answers
// await manual grading.
func SendPendingCorrectionEmail(to, instructorName, examTitle string, pendingCount int) error {
	body := fmt.Sprintf(
		"<h2>Hello %s,</h2><p><b>%d</b> essay answer(s) of <b>%s</b> are awaiting manual correction.</p>",
		instructorName, pendingCount, examTitle,
	)
	return SendEmail([]string{to}, "Essay answers awaiting correction", getEmailTemplate("Pending Correction", body))
}
