package commands

import (
	"context"
	"fmt"

	"boltalka/internal/api"
	"boltalka/internal/config"
	"boltalka/internal/session"
)

// Register creates a user through the directory service and persists the
// identity to the local session store, so the next run starts signed in.
func Register(ctx context.Context, username, phone string, cfg *config.Config) error {
	client := api.NewClient(ctx, api.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.HTTPTimeout,
	})

	user, err := client.CreateUser(ctx, username, phone)
	if err != nil {
		return fmt.Errorf("failed to register: %w. Is the server running?", err)
	}

	store, err := session.Open(cfg.DBFile)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.SaveUser(user); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	fmt.Printf("\nUser Created Successfully!\n")
	fmt.Printf("Username:          %s\n", user.Name)
	fmt.Printf("User ID:           %s\n\n", user.ID)
	fmt.Println("You are signed in. Run boltalka again to start chatting.")
	return nil
}
