package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"claudebridge/internal/config"
)

// authCommand returns the 'auth' subcommand for managing the upstream
// credential in the system keyring.
func authCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage upstream API key storage",
		Commands: []*cli.Command{
			authSetKeyCommand(),
			authClearKeyCommand(),
		},
	}
}

func authSetKeyCommand() *cli.Command {
	return &cli.Command{
		Name:   "set-key",
		Usage:  "Store the upstream API key in the system keyring",
		Action: authSetKeyAction,
	}
}

func authClearKeyCommand() *cli.Command {
	return &cli.Command{
		Name:   "clear-key",
		Usage:  "Remove the upstream API key from the system keyring",
		Action: authClearKeyAction,
	}
}

func authSetKeyAction(ctx context.Context, cmd *cli.Command) error {
	key, err := readSecureInput(ctx, "Upstream API key: ")
	if err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("API key must not be empty")
	}

	if err := config.StoreAPIKey(key); err != nil {
		return err
	}

	fmt.Println("API key saved to system keyring")
	return nil
}

func authClearKeyAction(ctx context.Context, cmd *cli.Command) error {
	if err := config.DeleteAPIKey(); err != nil {
		return err
	}

	fmt.Println("API key cleared from system keyring")
	return nil
}

// readSecureInput reads user input with hidden display and context cancellation support.
// Goroutine+select pattern required because term.ReadPassword has no native context support.
func readSecureInput(ctx context.Context, prompt string) (string, error) {
	fmt.Print(prompt)
	defer fmt.Println()

	type result struct {
		value string
		err   error
	}
	resultCh := make(chan result, 1)

	go func() {
		inputBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		resultCh <- result{value: string(inputBytes), err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-resultCh:
		if res.err != nil {
			return "", fmt.Errorf("failed to read input: %w", res.err)
		}
		return res.value, nil
	}
}
