package emails

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const brevoAPI = "https://api.brevo.com/v3/smtp/email"

// BrevoSendRequest matches Brevo API v3 send transactional email body.
type BrevoSendRequest struct {
	Sender      BrevoSender `json:"sender"`
	To          []BrevoTo   `json:"to"`
	Subject     string      `json:"subject"`
	HTMLContent string      `json:"htmlContent"`
}

type BrevoSender struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type BrevoTo struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Sender sends transactional emails. Nil = no-op; delivery failures are the
// caller's to log, never to surface to the API client.
type Sender interface {
	SendPasswordResetCode(ctx context.Context, toEmail, fullname, code string, ttl time.Duration) error
	SendTransferRequestNotice(ctx context.Context, toEmail, fullname, propertyTitle string) error
	SendContactResponse(ctx context.Context, toEmail, fullname, subject string) error
}

// BrevoClient sends emails via the Brevo API. Env: SENDINBLUE_API_KEY, MAIL_FROM.
type BrevoClient struct {
	APIKey   string
	MailFrom string
	Client   *http.Client
}

func (c *BrevoClient) from() string {
	if c.MailFrom != "" {
		return c.MailFrom
	}
	return "noreply@propshare.example"
}

func (c *BrevoClient) send(ctx context.Context, toEmail, subject, html string) error {
	if c.APIKey == "" {
		return nil
	}
	body := BrevoSendRequest{
		Sender:      BrevoSender{Email: c.from(), Name: "PropShare"},
		To:          []BrevoTo{{Email: toEmail}},
		Subject:     subject,
		HTMLContent: html,
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, brevoAPI, bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("brevo send: status %d", resp.StatusCode)
	}
	return nil
}

// SendPasswordResetCode delivers the one-time reset code.
func (c *BrevoClient) SendPasswordResetCode(ctx context.Context, toEmail, fullname, code string, ttl time.Duration) error {
	if c.APIKey == "" {
		return nil
	}
	content := passwordResetContent(fullname, code, ttl)
	return c.send(ctx, toEmail, "Your PropShare password reset code", EmailLayout(content))
}

// SendTransferRequestNotice tells a buyer a transfer request names them.
func (c *BrevoClient) SendTransferRequestNotice(ctx context.Context, toEmail, fullname, propertyTitle string) error {
	if c.APIKey == "" {
		return nil
	}
	content := transferNoticeContent(fullname, propertyTitle)
	return c.send(ctx, toEmail, "You have received an ownership transfer offer", EmailLayout(content))
}

// SendContactResponse tells an investor their inquiry has an answer.
func (c *BrevoClient) SendContactResponse(ctx context.Context, toEmail, fullname, subject string) error {
	if c.APIKey == "" {
		return nil
	}
	content := contactResponseContent(fullname, subject)
	return c.send(ctx, toEmail, "Re: "+subject, EmailLayout(content))
}

func passwordResetContent(fullname, code string, ttl time.Duration) string {
	if fullname == "" {
		fullname = "there"
	}
	minutes := int(ttl.Minutes())
	return fmt.Sprintf(`
    <h1>Password Reset Requested</h1>
    <p>Hi %s,</p>
    <p>Use the code below to reset your <strong>PropShare</strong> password. It expires in %d minutes and works only once.</p>
    <center>
      <p style="font-size: 32px; letter-spacing: 8px; font-weight: 700;">%s</p>
    </center>
    <p style="margin-top: 20px; font-size: 14px; color: #666;">
      If you did not request a reset, you can safely ignore this email.
    </p>
    <p>The PropShare Team</p>
`, EscapeHTML(fullname), minutes, EscapeHTML(code))
}

func transferNoticeContent(fullname, propertyTitle string) string {
	if fullname == "" {
		fullname = "there"
	}
	return fmt.Sprintf(`
    <h1>Ownership Transfer Offer</h1>
    <p>Hi %s,</p>
    <p>Another investor has offered to transfer their stake in <strong>%s</strong> to you. Sign in to review the sale price and accept or decline.</p>
    <p style="margin-top: 20px; font-size: 14px; color: #666;">
      Nothing changes until you respond and an administrator approves the transfer.
    </p>
    <p>The PropShare Team</p>
`, EscapeHTML(fullname), EscapeHTML(propertyTitle))
}

func contactResponseContent(fullname, subject string) string {
	if fullname == "" {
		fullname = "there"
	}
	return fmt.Sprintf(`
    <h1>Your Inquiry Has Been Answered</h1>
    <p>Hi %s,</p>
    <p>An administrator has responded to your inquiry <strong>%s</strong>. Sign in to read the full response.</p>
    <p>The PropShare Team</p>
`, EscapeHTML(fullname), EscapeHTML(subject))
}
