package cli

import (
	"context"
	"fmt"

	"simuorg/internal/client/models"
)

// RegisterFailedMessage is shown for any rejected registration.
const RegisterFailedMessage = "Registration failed. Please try again."

// Register prompts for account details and creates a user on the server.
// Registration does not log the user in; they authenticate afterwards.
func (a *App) Register(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	name, err := GetSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	if err := a.gw.Register(ctx, models.Registration{Email: email, Name: name, Password: password}); err != nil {
		a.log.Warn(ctx, "registration rejected", "email", email, "error", err)
		fmt.Fprintln(a.out, RegisterFailedMessage)
		return nil
	}

	fmt.Fprintln(a.out, "Registered. You can now log in.")
	return nil
}
