package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"
	"time"

	"lms/config"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendEmail sends an HTML email through SendGrid when an API key is
// configured, falling back to plain SMTP otherwise. Without either, the
// message is logged and dropped so local development keeps working.
func SendEmail(to []string, subject string, htmlBody string) error {
	if config.AppConfig == nil {
		log.Printf("--- Email skipped (no config): %s -> %v ---", subject, to)
		return nil
	}

	if config.AppConfig.SendgridAPIKey != "" {
		return sendViaSendgrid(to, subject, htmlBody)
	}
	if config.AppConfig.SMTPPassword != "" {
		return sendViaSMTP(to, subject, htmlBody)
	}

	log.Printf("--- Email skipped (no transport configured): %s -> %v ---", subject, to)
	return nil
}

func sendViaSendgrid(to []string, subject string, htmlBody string) error {
	from := mail.NewEmail("Teachwell", config.AppConfig.EmailSender)

	message := mail.NewV3Mail()
	message.SetFrom(from)
	message.Subject = subject
	message.AddContent(mail.NewContent("text/html", htmlBody))

	personalization := mail.NewPersonalization()
	for _, recipient := range to {
		personalization.AddTos(mail.NewEmail("", recipient))
	}
	message.AddPersonalizations(personalization)

	client := sendgrid.NewSendClient(config.AppConfig.SendgridAPIKey)
	resp, err := client.Send(message)
	if err != nil {
		log.Printf("Error sending email via SendGrid: %v", err)
		return err
	}
	if resp.StatusCode >= 300 {
		log.Printf("SendGrid rejected email (%d): %s", resp.StatusCode, resp.Body)
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}

func sendViaSMTP(to []string, subject string, htmlBody string) error {
	smtpHost := config.AppConfig.SMTPHost
	smtpPort := config.AppConfig.SMTPPort

	from := config.AppConfig.EmailSender
	password := config.AppConfig.SMTPPassword

	// MIME basics
	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: Teachwell <%s>\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", from, password, smtpHost)

	if err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, to, []byte(msg)); err != nil {
		log.Printf("Error sending email via SMTP: %v", err)
		return err
	}
	return nil
}

// getEmailTemplate wraps the body content in the shared Teachwell layout
func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #1D3A5F; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1D3A5F; line-height: 1.6; }
			.content h2 { color: #1D3A5F; margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.btn { display: inline-block; padding: 12px 24px; background-color: #3E8E5A; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; margin-top: 20px; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #3E8E5A; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>TEACHWELL</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				&copy; 2026 Teachwell. All rights reserved.<br>
				Professional development for teaching staff.
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// --- Triggers ---

// SendTeacherWelcomeEmail greets a newly added teacher with their login
func SendTeacherWelcomeEmail(email, name, schoolName, tempPassword string) {
	subject := "Welcome to Teachwell"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p><strong>%s</strong> has added you to Teachwell, their teacher training platform.</p>
		<p>Sign in with this email address and the temporary password below, then change it right away.</p>
		<div class="info-box">
			<strong>Temporary password:</strong> %s
		</div>
	`, name, schoolName, tempPassword)

	go SendEmail([]string{email}, subject, getEmailTemplate("Welcome Onboard!", body))
}

// SendCourseAssignedEmail tells a teacher about a new course assignment
func SendCourseAssignedEmail(email, name, courseTitle string, dueAt *time.Time) {
	subject := "New Course Assigned: " + courseTitle

	dueLine := ""
	if dueAt != nil {
		dueLine = fmt.Sprintf(`<div class="info-box"><strong>Due date:</strong> %s</div>`, dueAt.Format("January 2, 2006"))
	}

	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You have been assigned the course <strong>%s</strong>.</p>
		<p>Lessons unlock in order, so start with the first module and work your way through.</p>
		%s
	`, name, courseTitle, dueLine)

	go SendEmail([]string{email}, subject, getEmailTemplate("New Course Assignment", body))
}

// SendCourseReminderEmail nudges a teacher who has stalled on a course
func SendCourseReminderEmail(email, name, courseTitle string, progress float64, dueAt *time.Time) {
	subject := "Reminder: " + courseTitle

	dueLine := ""
	if dueAt != nil {
		dueLine = fmt.Sprintf(`<div class="info-box"><strong>Due date:</strong> %s</div>`, dueAt.Format("January 2, 2006"))
	}

	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You have not made progress on <strong>%s</strong> recently. You are currently at <strong>%.0f%%</strong>.</p>
		<p>Pick up where you left off - the next lesson is waiting for you.</p>
		%s
	`, name, courseTitle, progress, dueLine)

	go SendEmail([]string{email}, subject, getEmailTemplate("Course Reminder", body))
}

// SendCourseCompletedEmail congratulates a teacher on finishing a course
func SendCourseCompletedEmail(email, name, courseTitle string) {
	subject := "Course Completed: " + courseTitle
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Congratulations! You have completed <strong>%s</strong>.</p>
		<p>You can now request a completion certificate from your dashboard.</p>
	`, name, courseTitle)

	go SendEmail([]string{email}, subject, getEmailTemplate("Congratulations!", body))
}

// SendCertificateIssuedEmail delivers the certificate number to the teacher
func SendCertificateIssuedEmail(email, name, courseTitle, certificateNumber string) {
	subject := "Your Certificate for " + courseTitle
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your certificate for <strong>%s</strong> has been issued.</p>
		<div class="info-box">
			<strong>Certificate number:</strong> %s
		</div>
		<p>Keep this number for your records; your school can verify it at any time.</p>
	`, name, courseTitle, certificateNumber)

	go SendEmail([]string{email}, subject, getEmailTemplate("Certificate Issued", body))
}

// SendVideoFailedEmail tells the uploader their video could not be processed
func SendVideoFailedEmail(email, name, videoName, reason string) {
	subject := "Video Processing Failed"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your video <strong>%s</strong> could not be processed.</p>
		<div class="info-box">
			<strong>Reason:</strong> %s
		</div>
		<p>Please check the file and upload it again.</p>
	`, name, videoName, reason)

	go SendEmail([]string{email}, subject, getEmailTemplate("Upload Failed", body))
}

// SendLoginAlertEmail notifies a user about a new sign-in
func SendLoginAlertEmail(email, name, ip, device string) {
	subject := "New Sign-in to Your Teachwell Account"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>A new sign-in to your account was recorded.</p>
		<div class="info-box">
			<strong>IP address:</strong> %s<br>
			<strong>Device:</strong> %s
		</div>
		<p>If this was not you, reset your password immediately.</p>
	`, name, ip, device)

	go SendEmail([]string{email}, subject, getEmailTemplate("Sign-in Alert", body))
}

// SendOTPEmail delivers a verification or password reset code
func SendOTPEmail(otp, email string) error {
	subject := "Your Teachwell Verification Code"
	body := fmt.Sprintf(`
		<p>Your one-time verification code is:</p>
		<h1 style="text-align: center; color: #3E8E5A; font-size: 40px; margin: 20px 0;">%s</h1>
		<p>The code expires in 10 minutes. Do not share it with anyone.</p>
	`, otp)

	return SendEmail([]string{email}, subject, getEmailTemplate("Verification Code", body))
}
