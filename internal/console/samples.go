package console

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/voxkeeper/internal/common"
	"github.com/dmitrijs2005/voxkeeper/internal/server/models"
)

var errArchiveDisabled = errors.New("archive storage is not configured")

func (a *App) readOwner(args []string) (models.OwnerRef, error) {
	raw, err := argOrPrompt(a, args, "-Owner (human:<id> or ai:<id>)")
	if err != nil {
		return models.OwnerRef{}, err
	}
	o, err := models.ParseOwnerRef(raw)
	if err != nil {
		return models.OwnerRef{}, common.ValidationError{Field: "owner", Reason: "must look like human:<id> or ai:<id>"}
	}
	return o, nil
}

func (a *App) ListSamples(ctx context.Context, args []string) error {
	owner, err := a.readOwner(args)
	if err != nil {
		return err
	}
	list, err := a.Samples.ListByOwner(ctx, owner)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.println("No voice samples for", owner.String())
		return nil
	}
	for _, s := range list {
		a.println(fmt.Sprintf("%-5d device %-4d %8d bytes  %s",
			s.ID, s.DeviceID, s.Size, s.RecordedAt.Format("2006-01-02 15:04:05")))
	}
	return nil
}

func (a *App) RegisterVoice(ctx context.Context) error {
	owner, err := a.readOwner(nil)
	if err != nil {
		return err
	}
	rawDevice, err := GetSimpleText(a.reader, "-Microphone id", a.out)
	if err != nil {
		return err
	}
	deviceID, err := parseID(rawDevice)
	if err != nil {
		return err
	}
	payload, err := GetFile(a.reader, "-Voice file", false, a.out)
	if err != nil {
		return err
	}

	s, err := a.Samples.RegisterVoice(ctx, owner, deviceID, payload)
	if err != nil {
		return err
	}
	a.println(fmt.Sprintf("Voice sample %d saved (%d bytes)", s.ID, s.Size))
	return nil
}

func (a *App) ArchiveSample(ctx context.Context, args []string) error {
	if a.Archive == nil {
		return errArchiveDisabled
	}
	raw, err := argOrPrompt(a, args, "-Sample id")
	if err != nil {
		return err
	}
	id, err := parseID(raw)
	if err != nil {
		return err
	}
	res, err := a.Archive.Archive(ctx, id)
	if err != nil {
		return err
	}
	a.println("Archived as", res.Key)
	a.println("Download URL (valid until", res.Expires.Format("2006-01-02 15:04")+"):")
	a.println(res.URL)
	return nil
}
