package service

import (
	"context"
	"fmt"
	"html"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"smartspeak/internal/logger"
	"smartspeak/internal/models"
)

// EmailSender is the part of the SES client the email service uses
type EmailSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailConfig configures outgoing notifications
type EmailConfig struct {
	AWSRegion  string
	FromEmail  string
	FromName   string
	AdminEmail string
	AppBaseURL string
	Debug      bool
}

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     EmailSender
	fromEmail  string
	fromName   string
	adminEmail string
	appBaseURL string
	enabled    bool
	debug      bool
	log        *logger.Logger
}

// NewEmailService creates a new email service. Without a sender address the
// service is disabled and every send is skipped.
func NewEmailService(ctx context.Context, cfg EmailConfig, log *logger.Logger) (*EmailService, error) {
	if cfg.FromEmail == "" {
		log.Info("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, debug: cfg.Debug, log: log}, nil
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Info("Email service enabled", "from", cfg.FromEmail, "region", cfg.AWSRegion)
	return NewEmailServiceWithClient(sesv2.NewFromConfig(awsCfg), cfg, log), nil
}

// NewEmailServiceWithClient creates an enabled email service around an existing sender
func NewEmailServiceWithClient(client EmailSender, cfg EmailConfig, log *logger.Logger) *EmailService {
	return &EmailService{
		client:     client,
		fromEmail:  cfg.FromEmail,
		fromName:   cfg.FromName,
		adminEmail: cfg.AdminEmail,
		appBaseURL: cfg.AppBaseURL,
		enabled:    true,
		debug:      cfg.Debug,
		log:        log,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

const emailLayout = `<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #4a90e2; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header"><h1>%s</h1></div>
		<div class="content">%s</div>
		<div class="footer"><p>This is an automated email from SmartSpeak. Please do not reply.</p></div>
	</div>
</body>
</html>
`

// NotifyTeacherSignup tells the admin that a teacher is waiting for approval
func (s *EmailService) NotifyTeacherSignup(ctx context.Context, t *models.Teacher) error {
	if s.adminEmail == "" {
		s.log.Debug("Skipping teacher signup notification: no admin address")
		return nil
	}
	consoleURL := s.appBaseURL + "/admin/dashboard"
	subject := "New SmartSpeak teacher registration"
	htmlBody := fmt.Sprintf(emailLayout, "New Teacher Registration", fmt.Sprintf(
		`<p>%s (username <strong>%s</strong>) has registered as a teacher and is waiting for approval.</p>
			<p>Review the request in the <a href="%s">admin console</a>.</p>`,
		html.EscapeString(t.Name), html.EscapeString(t.Username), consoleURL))
	textBody := fmt.Sprintf("%s (username %s) has registered as a teacher and is waiting for approval.\n\nReview the request: %s\n",
		t.Name, t.Username, consoleURL)
	return s.sendEmail(ctx, s.adminEmail, subject, htmlBody, textBody)
}

// NotifyPasswordResetRequest tells the admin that a teacher asked for a new password
func (s *EmailService) NotifyPasswordResetRequest(ctx context.Context, t *models.Teacher) error {
	if s.adminEmail == "" {
		s.log.Debug("Skipping password reset notification: no admin address")
		return nil
	}
	consoleURL := s.appBaseURL + "/admin/dashboard"
	subject := "SmartSpeak teacher password reset request"
	htmlBody := fmt.Sprintf(emailLayout, "Password Reset Request", fmt.Sprintf(
		`<p>%s (username <strong>%s</strong>) forgot their password and asked for a reset.</p>
			<p>Set a new password in the <a href="%s">admin console</a>.</p>`,
		html.EscapeString(t.Name), html.EscapeString(t.Username), consoleURL))
	textBody := fmt.Sprintf("%s (username %s) forgot their password and asked for a reset.\n\nSet a new password: %s\n",
		t.Name, t.Username, consoleURL)
	return s.sendEmail(ctx, s.adminEmail, subject, htmlBody, textBody)
}

// SendTeacherPasswordReset sends a teacher the password an admin just set
func (s *EmailService) SendTeacherPasswordReset(ctx context.Context, t *models.Teacher, password string) error {
	if t.Email == "" {
		return nil
	}
	loginURL := s.appBaseURL + "/login?type=teacher"
	subject := "Your SmartSpeak password has been reset"
	htmlBody := fmt.Sprintf(emailLayout, "Password Reset", fmt.Sprintf(
		`<p>Hi %s,</p>
			<p>Your admin has reset your password. Your new password is <strong>%s</strong>.</p>
			<p><a href="%s">Log in to SmartSpeak</a></p>`,
		html.EscapeString(t.Name), html.EscapeString(password), loginURL))
	textBody := fmt.Sprintf("Hi %s,\n\nYour admin has reset your password. Your new password is: %s\n\nLog in: %s\n",
		t.Name, password, loginURL)
	return s.sendEmail(ctx, t.Email, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	if !s.enabled {
		s.log.Info("Skipping email send (service disabled)", "to", toEmail, "subject", subject)
		return nil
	}

	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}
	if s.debug {
		s.log.Debug("Sending email", "from", fromAddress, "to", toEmail, "subject", subject, "html_bytes", len(htmlBody))
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	if s.debug && result.MessageId != nil {
		s.log.Debug("SES accepted email", "message_id", *result.MessageId)
	}
	s.log.Info("Email sent", "to", toEmail, "subject", subject)
	return nil
}
