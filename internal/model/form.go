package model

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// MaxUsernameLength is the maximum customer name length in runes.
const MaxUsernameLength = 64

// CustomerForm is the validated input of the add/edit customer dialog.
type CustomerForm struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Trimmed returns the form with surrounding whitespace removed from every field.
func (f CustomerForm) Trimmed() CustomerForm {
	return CustomerForm{
		Username: strings.TrimSpace(f.Username),
		Email:    strings.TrimSpace(f.Email),
	}
}

// Validate checks the form the way the dialog schema does. Email is
// optional because the dialog only asks for the customer name.
func (f CustomerForm) Validate() error {
	f = f.Trimmed()

	var errs ValidationErrors
	switch {
	case f.Username == "":
		errs = append(errs, FieldError{Field: "username", Message: "Customer name is required"})
	case utf8.RuneCountInString(f.Username) > MaxUsernameLength:
		errs = append(errs, FieldError{Field: "username", Message: "Customer name is too long"})
	}

	if f.Email != "" && !isBareAddress(f.Email) {
		errs = append(errs, FieldError{Field: "email", Message: "Invalid email address"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// PasswordChange is the input of the change password action.
type PasswordChange struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// Validate requires both passwords and rejects reusing the old one.
func (p PasswordChange) Validate() error {
	oldPw := strings.TrimSpace(p.OldPassword)
	newPw := strings.TrimSpace(p.NewPassword)

	var errs ValidationErrors
	if oldPw == "" {
		errs = append(errs, FieldError{Field: "oldPassword", Message: "Current password is required"})
	}
	if newPw == "" {
		errs = append(errs, FieldError{Field: "newPassword", Message: "New password is required"})
	} else if newPw == oldPw {
		errs = append(errs, FieldError{Field: "newPassword", Message: "New password must differ from the current one"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// isBareAddress accepts "a@b.c" but not "Name <a@b.c>".
func isBareAddress(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s
}
