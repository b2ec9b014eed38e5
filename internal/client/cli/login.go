package cli

import (
	"context"
	"fmt"

	"simuorg/internal/client/models"
)

// LoginFailedMessage is shown for any rejected authentication, whatever the
// underlying cause.
const LoginFailedMessage = "Invalid email or password."

// Login prompts for credentials and authenticates against the server. A
// rejected call never touches the session: it stays unauthenticated and the
// fixed message is shown.
func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	user, token, err := a.gw.Authenticate(ctx, models.Credentials{Email: email, Password: password})
	if err != nil {
		a.log.Warn(ctx, "login rejected", "email", email, "error", err)
		fmt.Fprintln(a.out, LoginFailedMessage)
		return nil
	}

	a.session.Login(ctx, user, token)
	fmt.Fprintln(a.out, "Logged in as", a.status())
	return nil
}

// Logout clears the session and the persisted token.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
