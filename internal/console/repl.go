package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/voxkeeper/internal/common"
)

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	authorize() error

	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	ChangePassword(ctx context.Context) error

	Setup(ctx context.Context) error
	Identities(ctx context.Context) error
	ShowHuman(ctx context.Context, args []string) error
	ShowAI(ctx context.Context, args []string) error
	EditHuman(ctx context.Context, args []string) error
	EditAI(ctx context.Context, args []string) error

	Types(ctx context.Context) error
	AddType(ctx context.Context) error
	Devices(ctx context.Context) error
	Microphones(ctx context.Context) error
	AddDevice(ctx context.Context) error
	DeviceStatus(ctx context.Context, args []string) error

	ListSamples(ctx context.Context, args []string) error
	RegisterVoice(ctx context.Context) error
	ArchiveSample(ctx context.Context, args []string) error
}

// open lists the commands that work without an authenticated session.
var open = map[string]bool{
	"help": true, "login": true, "exit": true, "quit": true,
}

// runREPL reads commands from reader and dispatches them to a until EOF or
// exit. Every command not in open is refused unless the session is
// authenticated. Handler errors are printed and the loop continues.
//
//	Not logged in:
//	  help, login, exit
//
//	Logged in:
//	  logout, passwd
//	  setup, identities, human <id>, ai <id>, edit-human <id>, edit-ai <id>
//	  types, add-type, devices, mics, add-device, device-status <id> <status>
//	  samples <human:ID|ai:ID>, register-voice, archive <sample id>
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	say := func(args ...any) { fmt.Fprintln(out, args...) }
	for {
		fmt.Fprintf(out, "vk %s> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if !open[cmd] {
			if _, known := handlers[cmd]; !known {
				say("Unknown command:", cmd)
				continue
			}
			if err := a.authorize(); err != nil {
				say(describe(err))
				continue
			}
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				say("Available commands: logout, passwd, setup, identities, human, ai, edit-human, edit-ai,",
					"types, add-type, devices, mics, add-device, device-status, samples, register-voice, archive, exit")
			} else {
				say("Available commands: login, exit")
			}
			continue
		case "exit", "quit":
			say("Bye!")
			return
		}

		if err := handlers[cmd](ctx, a, args); err != nil {
			say(describe(err))
		}
	}
}

var handlers = map[string]func(context.Context, execIface, []string) error{
	"login":          func(ctx context.Context, a execIface, _ []string) error { return a.Login(ctx) },
	"logout":         func(ctx context.Context, a execIface, _ []string) error { return a.Logout(ctx) },
	"passwd":         func(ctx context.Context, a execIface, _ []string) error { return a.ChangePassword(ctx) },
	"setup":          func(ctx context.Context, a execIface, _ []string) error { return a.Setup(ctx) },
	"identities":     func(ctx context.Context, a execIface, _ []string) error { return a.Identities(ctx) },
	"human":          func(ctx context.Context, a execIface, args []string) error { return a.ShowHuman(ctx, args) },
	"ai":             func(ctx context.Context, a execIface, args []string) error { return a.ShowAI(ctx, args) },
	"edit-human":     func(ctx context.Context, a execIface, args []string) error { return a.EditHuman(ctx, args) },
	"edit-ai":        func(ctx context.Context, a execIface, args []string) error { return a.EditAI(ctx, args) },
	"types":          func(ctx context.Context, a execIface, _ []string) error { return a.Types(ctx) },
	"add-type":       func(ctx context.Context, a execIface, _ []string) error { return a.AddType(ctx) },
	"devices":        func(ctx context.Context, a execIface, _ []string) error { return a.Devices(ctx) },
	"mics":           func(ctx context.Context, a execIface, _ []string) error { return a.Microphones(ctx) },
	"add-device":     func(ctx context.Context, a execIface, _ []string) error { return a.AddDevice(ctx) },
	"device-status":  func(ctx context.Context, a execIface, args []string) error { return a.DeviceStatus(ctx, args) },
	"samples":        func(ctx context.Context, a execIface, args []string) error { return a.ListSamples(ctx, args) },
	"register-voice": func(ctx context.Context, a execIface, _ []string) error { return a.RegisterVoice(ctx) },
	"archive":        func(ctx context.Context, a execIface, args []string) error { return a.ArchiveSample(ctx, args) },
}

// describe turns a handler error into a line for the operator.
func describe(err error) string {
	var ve common.ValidationError
	switch {
	case errors.Is(err, common.ErrorLocked):
		return "Session locked after too many failed logins. Restart the console to try again."
	case errors.Is(err, common.ErrorUnauthorized):
		return "Access denied: " + err.Error()
	case errors.As(err, &ve):
		return "Invalid input: " + ve.Error()
	case errors.Is(err, common.ErrorNotFound):
		return "Not found: " + err.Error()
	case errors.Is(err, common.ErrorConflict):
		return "Already exists: " + err.Error()
	default:
		return "Error: " + err.Error()
	}
}
