package console

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/voxkeeper/internal/server/models"
	"github.com/dmitrijs2005/voxkeeper/internal/server/services"
)

func (a *App) Types(ctx context.Context) error {
	list, err := a.Deps.Devices.ListTypes(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.println("No device types")
		return nil
	}
	for _, t := range list {
		a.println(fmt.Sprintf("%-4d %-16s %s", t.ID, t.Name, t.Description))
	}
	return nil
}

func (a *App) AddType(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "-Type name", a.out)
	if err != nil {
		return err
	}
	description, err := GetSimpleText(a.reader, "-Description", a.out)
	if err != nil {
		return err
	}
	t, err := a.Deps.Devices.CreateType(ctx, name, description)
	if err != nil {
		return err
	}
	a.println(fmt.Sprintf("Device type %q saved with id %d", t.Name, t.ID))
	return nil
}

func (a *App) printDevices(list []*models.Device) {
	if len(list) == 0 {
		a.println("No devices")
		return
	}
	for _, d := range list {
		a.println(fmt.Sprintf("%-4d %-20s %-12s %-9s %s  last seen %s",
			d.ID, d.Name, d.TypeName, d.Status, d.UniqueIdentifier, d.LastSeenAt.Format("2006-01-02 15:04")))
	}
}

func (a *App) Devices(ctx context.Context) error {
	list, err := a.Deps.Devices.ListDevices(ctx)
	if err != nil {
		return err
	}
	a.printDevices(list)
	return nil
}

func (a *App) Microphones(ctx context.Context) error {
	list, err := a.Deps.Devices.ListMicrophones(ctx)
	if err != nil {
		return err
	}
	a.printDevices(list)
	return nil
}

func (a *App) AddDevice(ctx context.Context) error {
	var in services.DeviceInput
	var err error

	if in.Name, err = GetSimpleText(a.reader, "-Device name", a.out); err != nil {
		return err
	}
	rawType, err := GetSimpleText(a.reader, "-Device type id", a.out)
	if err != nil {
		return err
	}
	if in.TypeID, err = parseID(rawType); err != nil {
		return err
	}
	if in.Location, err = GetOptionalText(a.reader, "-Location", a.out); err != nil {
		return err
	}
	if in.IPAddress, err = GetOptionalText(a.reader, "-IP address", a.out); err != nil {
		return err
	}
	if in.MACAddress, err = GetOptionalText(a.reader, "-MAC address", a.out); err != nil {
		return err
	}

	d, err := a.Deps.Devices.CreateDevice(ctx, in)
	if err != nil {
		return err
	}
	a.println(fmt.Sprintf("Device %d registered as %s", d.ID, d.UniqueIdentifier))
	return nil
}

// DeviceStatus takes "<id> <status>" as arguments and prompts for any that
// are missing.
func (a *App) DeviceStatus(ctx context.Context, args []string) error {
	raw, err := argOrPrompt(a, args, "-Device id")
	if err != nil {
		return err
	}
	id, err := parseID(raw)
	if err != nil {
		return err
	}

	var status string
	if len(args) > 1 {
		status = args[1]
	} else if status, err = GetSimpleText(a.reader, "-Status (active, inactive, retired)", a.out); err != nil {
		return err
	}

	if err := a.Deps.Devices.SetStatus(ctx, id, models.DeviceStatus(status)); err != nil {
		return err
	}
	a.println(fmt.Sprintf("Device %d is now %s", id, status))
	return nil
}
