package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/pz-dev/bibliocli/internal/console/session"
)

// CmdLogin signs in. Empty email means prompt for it; the password is
// always read without echo.
func (a *App) CmdLogin(ctx context.Context, email string) error {
	var err error
	if email == "" {
		email, err = GetSimpleText(a.reader, "Email", a.out)
		if err != nil {
			return err
		}
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	u, err := a.session.Login(ctx, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", u.Name, u.Email)
	return nil
}

// CmdRegister creates an account and signs in.
func (a *App) CmdRegister(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Name", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	u, err := a.session.Register(ctx, name, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome, %s! You are now logged in.\n", u.Name)
	return nil
}

// CmdLogout drops the session and the persisted credential.
func (a *App) CmdLogout() error {
	if !a.session.LoggedIn() {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	if err := a.session.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// CmdWhoami prints the current identity and token expiry, if known.
func (a *App) CmdWhoami() error {
	u, err := a.requireLogin()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s> role=%s\n", u.Name, u.Email, u.Role)
	if claims, ok := a.session.Claims(); ok && !claims.ExpiresAt.IsZero() {
		fmt.Fprintf(a.out, "Token expires %s\n", claims.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}

// CmdProfileSet applies a non-interactive profile update from command
// flags. Empty values leave the field unchanged.
func (a *App) CmdProfileSet(ctx context.Context, name, email, password string) error {
	if _, err := a.requireLogin(); err != nil {
		return err
	}
	updated, err := a.session.UpdateProfile(ctx, session.ProfilePatch{
		Name:     name,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Profile updated: %s <%s>\n", updated.Name, updated.Email)
	return nil
}

// CmdProfile updates the logged-in user's own name and email. Empty
// answers leave the field unchanged; the change is confirmed before it is
// sent.
func (a *App) CmdProfile(ctx context.Context) error {
	u, err := a.requireLogin()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Editing profile of %s <%s>\n", u.Name, u.Email)

	name, err := GetOptionalText(a.reader, "New name", a.out)
	if err != nil {
		return err
	}
	email, err := GetOptionalText(a.reader, "New email", a.out)
	if err != nil {
		return err
	}

	patch := session.ProfilePatch{Name: name, Email: email}
	if patch.Name == "" && patch.Email == "" {
		fmt.Fprintln(a.out, "Nothing to change.")
		return nil
	}

	ok, err := GetConfirmation(a.reader, "Apply these changes?", a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}

	updated, err := a.session.UpdateProfile(ctx, patch)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Profile updated: %s <%s>\n", updated.Name, updated.Email)
	return nil
}
