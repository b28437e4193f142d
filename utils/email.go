package utils

import (
	"fmt"

	sendgrid "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"fashion-store/models"
)

// EmailService sends customer notifications through SendGrid. It satisfies
// services.Notifier; failures are non-fatal to the calling workflows.
type EmailService struct {
	client *sendgrid.Client
	sender string
}

// NewEmailService builds a SendGrid-backed notifier.
func NewEmailService(apiKey, sender string) *EmailService {
	return &EmailService{
		client: sendgrid.NewSendClient(apiKey),
		sender: sender,
	}
}

func (es *EmailService) send(toName, toEmail, subject, htmlContent string) error {
	from := mail.NewEmail("Fashion Store", es.sender)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, htmlContent, htmlContent)

	resp, err := es.client.Send(message)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("send email: sendgrid status %d", resp.StatusCode)
	}
	return nil
}

// SendOrderConfirmation emails the order summary to the buyer.
func (es *EmailService) SendOrderConfirmation(user *models.User, order *models.Order) error {
	subject := fmt.Sprintf("Order Confirmation - %s", order.OrderNumber)
	content := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Thank you for your purchase! Your order <strong>%s</strong> has been placed successfully.<br><br>Subtotal: $%.2f<br>Tax: $%.2f<br>Shipping: $%.2f<br>Total: <strong>$%.2f</strong><br><br>Thank you for shopping with us!",
		user.Name, order.OrderNumber, order.Subtotal, order.Tax, order.Shipping, order.Total,
	)
	return es.send(user.Name, user.Email, subject, content)
}

// SendWelcome greets a freshly registered user.
func (es *EmailService) SendWelcome(user *models.User) error {
	content := fmt.Sprintf(
		"<strong>Welcome %s!</strong><br><br>Your account has been created. Happy shopping!",
		user.Name,
	)
	return es.send(user.Name, user.Email, "Welcome to Fashion Store", content)
}
