package console

import (
	"context"

	"github.com/dmitrijs2005/voxkeeper/internal/common"
)

func (a *App) Login(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "-Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := GetPassword(a.reader, "-Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.Guard.Login(ctx, a.session, username, string(password)); err != nil {
		return err
	}

	a.saveTicket(ctx)
	a.println("Login successful")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.Guard.Logout(ctx, a.session); err != nil {
		return err
	}
	a.dropTicket()
	a.println("Logged out")
	return nil
}

func (a *App) ChangePassword(ctx context.Context) error {
	current, err := GetPassword(a.reader, "-Enter current password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(current)

	next, err := GetPassword(a.reader, "-Enter new password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(next)

	confirm, err := GetPassword(a.reader, "-Confirm new password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if err := a.Guard.ChangePassword(ctx, a.session, string(current), string(next), string(confirm)); err != nil {
		return err
	}
	a.println("Password changed")
	return nil
}
