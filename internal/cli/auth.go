package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

func (a *App) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	username := fs.String("user", "", "username")
	passwordFlag := fs.String("password", "", "password (prompted if omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, password, err := a.credentials(*username, *passwordFlag)
	if err != nil {
		return err
	}

	logged, err := a.client.Login(ctx, user, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Logged in as %s\n", logged.Username)
	return nil
}

func (a *App) cmdRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	username := fs.String("user", "", "username")
	passwordFlag := fs.String("password", "", "password (prompted if omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, password, err := a.credentials(*username, *passwordFlag)
	if err != nil {
		return err
	}

	if err := a.client.Register(ctx, user, password); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Account %s created, log in with 'tripspend login'\n", user)
	return nil
}

func (a *App) cmdLogout(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("logout takes no arguments")
	}
	if err := a.client.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "Logged out")
	return nil
}

func (a *App) cmdWhoami(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("whoami takes no arguments")
	}
	sess := a.sessions.Get()
	if !sess.Active() {
		fmt.Fprintln(a.stdout, "Not logged in")
		return nil
	}
	if sess.Expired() {
		fmt.Fprintf(a.stdout, "%s (session expired, log in again)\n", sess.User.Username)
		return nil
	}
	fmt.Fprintln(a.stdout, sess.User.Username)
	return nil
}

// credentials fills whichever of username and password was not passed as a
// flag, prompting on the terminal. The password prompt never echoes.
func (a *App) credentials(username, password string) (string, string, error) {
	if username == "" {
		fmt.Fprint(a.stdout, "Username: ")
		line, err := a.readLine()
		if err != nil {
			return "", "", fmt.Errorf("read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}
	if username == "" {
		return "", "", fmt.Errorf("username cannot be empty")
	}

	if password == "" {
		fmt.Fprint(a.stdout, "Password: ")
		var err error
		password, err = a.readPassword()
		if err != nil {
			return "", "", fmt.Errorf("read password: %w", err)
		}
		fmt.Fprintln(a.stdout)
	}
	if strings.TrimSpace(password) == "" {
		return "", "", fmt.Errorf("password cannot be empty")
	}
	return username, password, nil
}

func (a *App) readLine() (string, error) {
	if a.scanner == nil {
		a.scanner = bufio.NewScanner(a.stdin)
	}
	if a.scanner.Scan() {
		return a.scanner.Text(), nil
	}
	if err := a.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (a *App) readPassword() (string, error) {
	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	// Non-terminal input, e.g. tests or pipes.
	return a.readLine()
}
