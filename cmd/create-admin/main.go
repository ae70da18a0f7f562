package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"client-feedback-admin/internal/container"
	"client-feedback-admin/internal/models"
	"client-feedback-admin/internal/repositories"
	"client-feedback-admin/internal/security"
	"client-feedback-admin/internal/services"

	"go.uber.org/fx"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: go run cmd/create-admin/main.go <username> <email>")
		fmt.Println("The password is read from ADMIN_PASSWORD or, if unset, from stdin")
		os.Exit(1)
	}

	username := strings.TrimSpace(os.Args[1])
	email := strings.ToLower(strings.TrimSpace(os.Args[2]))

	password, err := readPassword()
	if err != nil {
		log.Fatalf("Failed to read password: %v", err)
	}

	if err := security.NewPasswordValidator().ValidatePassword(password); err != nil {
		log.Fatalf("Password rejected: %v", err)
	}

	app := fx.New(
		container.Module,
		fx.NopLogger,
		fx.Invoke(func(
			authService services.AuthenticationService,
			adminRepo repositories.AdminRepository,
			validator *models.ValidationService,
		) {
			ctx := context.Background()

			existing, err := adminRepo.GetByUsername(ctx, username)
			if err != nil && !errors.Is(err, repositories.ErrNotFound) {
				log.Fatalf("Failed to look up administrator '%s': %v", username, err)
			}
			if existing != nil {
				log.Fatalf("Administrator '%s' already exists", username)
			}

			hash, err := authService.HashPassword(password)
			if err != nil {
				log.Fatalf("Failed to hash password: %v", err)
			}

			admin := &models.Admin{
				Username:     username,
				Email:        email,
				PasswordHash: hash,
				IsActive:     true,
			}
			if err := validator.ValidateStruct(admin); err != nil {
				log.Fatalf("Invalid administrator: %v", err)
			}

			if err := adminRepo.Create(ctx, admin); err != nil {
				log.Fatalf("Failed to create administrator: %v", err)
			}

			token, err := authService.GenerateJWT(ctx, admin)
			if err != nil {
				log.Fatalf("Failed to generate JWT token: %v", err)
			}

			fmt.Printf("Created administrator '%s' (%s)\n", admin.Username, admin.ID)
			fmt.Printf("\nUse this token in the Authorization header:\n")
			fmt.Printf("Authorization: Bearer %s\n", token)
			fmt.Printf("\nExample curl command:\n")
			fmt.Printf("curl -H \"Authorization: Bearer %s\" http://localhost:8080/api/v1/clients\n", token)
		}),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	app.Stop(context.Background())
}

func readPassword() (string, error) {
	if password := os.Getenv("ADMIN_PASSWORD"); password != "" {
		return password, nil
	}

	fmt.Print("Password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
