// Command admincli manages admin user accounts directly against the
// database. There is no registration endpoint; accounts are provisioned
// from the command line on the host running the server.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/devfolio/portfolio-backend/internal/auth"
	"github.com/devfolio/portfolio-backend/internal/config"
	"github.com/devfolio/portfolio-backend/internal/db"
	"github.com/devfolio/portfolio-backend/internal/db/repositories"
	"github.com/devfolio/portfolio-backend/internal/sanitize"
	"github.com/devfolio/portfolio-backend/internal/validation"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) < 1 {
		printUsage()
		return errors.New("missing command")
	}

	switch args[0] {
	case "create":
		return withRepo(func(ctx context.Context, repo *repositories.AdminUserRepository) error {
			return createUser(ctx, repo, args[1:])
		})
	case "reset-password":
		return withRepo(func(ctx context.Context, repo *repositories.AdminUserRepository) error {
			return resetPassword(ctx, repo, args[1:])
		})
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func printUsage() {
	fmt.Println(`admincli - admin account management

Usage:
  admincli create <email>          Create an admin account (password read from stdin)
  admincli reset-password <email>  Replace an account's password (read from stdin)

Configuration is read from config.yaml (or $CONFIG_PATH) and PF_* environment variables.`)
}

func withRepo(fn func(context.Context, *repositories.AdminUserRepository) error) error {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := db.Connect(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return fn(ctx, repositories.NewAdminUserRepository(store))
}

func createUser(ctx context.Context, repo *repositories.AdminUserRepository, args []string) error {
	email, hash, err := emailAndHash(args)
	if err != nil {
		return err
	}

	user, err := repo.Create(ctx, email, hash)
	if err != nil {
		if errors.Is(err, db.ErrAlreadyExists) {
			return fmt.Errorf("an account for %s already exists (use reset-password)", email)
		}
		return err
	}

	fmt.Printf("created admin account %s (id %d)\n", user.Email, user.ID)
	return nil
}

func resetPassword(ctx context.Context, repo *repositories.AdminUserRepository, args []string) error {
	email, hash, err := emailAndHash(args)
	if err != nil {
		return err
	}

	if err := repo.UpdatePasswordHash(ctx, email, hash); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("no account for %s", email)
		}
		return err
	}

	fmt.Printf("password updated for %s\n", email)
	return nil
}

func emailAndHash(args []string) (string, string, error) {
	if len(args) != 1 {
		return "", "", errors.New("exactly one email argument is required")
	}

	email := sanitize.Email(args[0])
	if err := validation.EmailAddress(email); err != nil {
		return "", "", fmt.Errorf("invalid email %q: %w", args[0], err)
	}

	password, err := readPassword()
	if err != nil {
		return "", "", err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", "", err
	}
	return email, hash, nil
}

func readPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading password: %w", err)
	}

	password := strings.TrimRight(line, "\r\n")
	if len(strings.TrimSpace(password)) < 8 {
		return "", errors.New("password must be at least 8 characters")
	}
	return password, nil
}
