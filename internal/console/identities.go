package console

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/voxkeeper/internal/server/models"
	"github.com/dmitrijs2005/voxkeeper/internal/server/services"
)

func (a *App) readHumanInput() (services.HumanInput, error) {
	var in services.HumanInput
	var err error

	if in.FullName, err = GetSimpleText(a.reader, "-Full name", a.out); err != nil {
		return in, err
	}
	if in.NickName, err = GetSimpleText(a.reader, "-Nickname", a.out); err != nil {
		return in, err
	}
	if in.Email, err = GetSimpleText(a.reader, "-Email", a.out); err != nil {
		return in, err
	}
	if in.PhoneNumber, err = GetSimpleText(a.reader, "-Phone number", a.out); err != nil {
		return in, err
	}
	if in.CharacterSheet, err = GetOptionalText(a.reader, "-Character sheet", a.out); err != nil {
		return in, err
	}
	if in.LifeStylePreferences, err = GetOptionalText(a.reader, "-Lifestyle preferences", a.out); err != nil {
		return in, err
	}
	return in, nil
}

// Setup runs the provisioning form: a human, an AI, their microphone and
// optional voice files.
func (a *App) Setup(ctx context.Context) error {
	done, err := a.Deps.Identities.IsSetupComplete(ctx)
	if err != nil {
		return err
	}
	if done {
		a.println("Note: identities already exist, this adds another set.")
	}

	var in services.ProvisionInput
	if in.Human, err = a.readHumanInput(); err != nil {
		return err
	}
	if in.HumanVoice, err = GetFile(a.reader, "-Human voice file", true, a.out); err != nil {
		return err
	}
	if in.AIName, err = GetSimpleText(a.reader, "-AI name", a.out); err != nil {
		return err
	}
	if in.AIBasePrompt, err = GetSimpleText(a.reader, "-AI base prompt", a.out); err != nil {
		return err
	}
	if in.AIVoice, err = GetFile(a.reader, "-AI voice file", true, a.out); err != nil {
		return err
	}
	if in.DeviceName, err = GetSimpleText(a.reader, "-Microphone name", a.out); err != nil {
		return err
	}

	res, err := a.Provision.ProvisionIdentitySetup(ctx, in)
	if err != nil {
		return err
	}
	a.println(fmt.Sprintf("Provisioned human %s, ai %d, device %d, %d voice sample(s)",
		res.HumanID, res.AIID, res.DeviceID, len(res.SampleIDs)))
	return nil
}

func (a *App) Identities(ctx context.Context) error {
	list, err := a.Deps.Identities.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.println("No identities yet, run setup")
		return nil
	}
	for _, id := range list {
		a.println(fmt.Sprintf("%-5s %-28s %s", id.Kind(), id.Owner().String(), id.DisplayName()))
	}
	return nil
}

func argOrPrompt(a *App, args []string, prompt string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return GetSimpleText(a.reader, prompt, a.out)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%q is not a valid id", s)
	}
	return id, nil
}

func optional(p *string) string {
	if p == nil {
		return "-"
	}
	return *p
}

func (a *App) ShowHuman(ctx context.Context, args []string) error {
	id, err := argOrPrompt(a, args, "-Human id")
	if err != nil {
		return err
	}
	h, err := a.Deps.Identities.GetHuman(ctx, id)
	if err != nil {
		return err
	}
	a.printHuman(h)
	return nil
}

func (a *App) printHuman(h *models.Human) {
	a.println("ID:          ", h.ID)
	a.println("Full name:   ", h.FullName)
	a.println("Nickname:    ", h.NickName)
	a.println("Email:       ", h.Email)
	a.println("Phone:       ", h.PhoneNumber)
	a.println("Character:   ", optional(h.CharacterSheet))
	a.println("Lifestyle:   ", optional(h.LifeStylePreferences))
	a.println("Role:        ", h.RoleID)
	a.println("Created:     ", h.CreatedAt.Format("2006-01-02 15:04:05"))
}

func (a *App) ShowAI(ctx context.Context, args []string) error {
	raw, err := argOrPrompt(a, args, "-AI id")
	if err != nil {
		return err
	}
	id, err := parseID(raw)
	if err != nil {
		return err
	}
	ai, err := a.Deps.Identities.GetAI(ctx, id)
	if err != nil {
		return err
	}
	a.println("ID:          ", ai.ID)
	a.println("Name:        ", ai.Name)
	a.println("Base prompt: ", ai.BasePrompt)
	a.println("Created:     ", ai.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func (a *App) EditHuman(ctx context.Context, args []string) error {
	id, err := argOrPrompt(a, args, "-Human id")
	if err != nil {
		return err
	}
	if _, err := a.Deps.Identities.GetHuman(ctx, id); err != nil {
		return err
	}
	in, err := a.readHumanInput()
	if err != nil {
		return err
	}
	if err := a.Deps.Identities.UpdateHuman(ctx, id, in); err != nil {
		return err
	}
	a.println("Human updated")
	return nil
}

func (a *App) EditAI(ctx context.Context, args []string) error {
	raw, err := argOrPrompt(a, args, "-AI id")
	if err != nil {
		return err
	}
	id, err := parseID(raw)
	if err != nil {
		return err
	}
	name, err := GetSimpleText(a.reader, "-AI name", a.out)
	if err != nil {
		return err
	}
	prompt, err := GetSimpleText(a.reader, "-AI base prompt", a.out)
	if err != nil {
		return err
	}
	if err := a.Deps.Identities.UpdateAI(ctx, id, name, prompt); err != nil {
		return err
	}
	a.println("AI updated")
	return nil
}
