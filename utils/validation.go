package utils

import (
	netmail "net/mail"
)

// ValidateEmail rejects addresses that do not parse per RFC 5322.
func ValidateEmail(email string) error {
	_, err := netmail.ParseAddress(email)

	return err
}
