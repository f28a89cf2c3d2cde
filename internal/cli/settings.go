package cli

import (
	"context"
	"fmt"
	"strings"
)

// cmdSettings manages backend-side settings. The only operation today is
// set-key, which stores OCR provider API keys in the backend's environment.
func (a *App) cmdSettings(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: settings set-key KEY=VALUE ...")
	}
	switch args[0] {
	case "set-key":
		return a.settingsSetKey(ctx, args[1:])
	default:
		return fmt.Errorf("unknown settings subcommand %q", args[0])
	}
}

func (a *App) settingsSetKey(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: settings set-key KEY=VALUE ...")
	}
	keys := make(map[string]string, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return fmt.Errorf("malformed pair %q, want KEY=VALUE", arg)
		}
		keys[k] = v
	}

	msg, err := a.client.UpdateEnv(ctx, keys)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, msg)
	return nil
}
