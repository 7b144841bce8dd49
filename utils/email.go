package utils

import (
	"fmt"
	"os"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendResetToken emails a password-reset token via SendGrid. The sender
// address comes from RESET_EMAIL_FROM.
func SendResetToken(email string, token string) error {
	from := mail.NewEmail("Gatekeep Support", os.Getenv("RESET_EMAIL_FROM"))
	subject := "Password Reset Token"

	to := mail.NewEmail("", email)

	plainTextContent := fmt.Sprintf("Your password reset token is: %s", token)
	htmlContent := fmt.Sprintf("<strong>Your password reset token is: %s</strong>", token)

	message := mail.NewSingleEmail(from, subject, to, plainTextContent, htmlContent)

	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
	response, err := client.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid responded %d", response.StatusCode)
	}

	return nil
}
