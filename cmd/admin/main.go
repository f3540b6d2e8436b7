// Command admin grants admin access to an existing user.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"neuromentor/internal/app"
	"neuromentor/internal/bootstrap"
	"neuromentor/internal/repository"
)

func main() {
	userID := flag.Uint("user-id", 0, "id of the existing user to promote")
	role := flag.String("role", "moderator", "owner, admin or moderator")
	password := flag.String("password", "", "admin password, at least 8 characters")
	flag.Parse()

	if *userID == 0 || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a, err := bootstrap.New(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bootstrap failed: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	svc := app.NewAdminService(
		repository.NewUserRepository(a.DB),
		repository.NewAdminRepository(a.DB),
		repository.NewSubscriptionRepository(a.DB),
		repository.NewUsageLogRepository(a.DB),
		a.Config.Auth.JWTSecret,
		a.Config.JWTExpiration(),
	)

	admin, err := svc.CreateAdmin(ctx, app.CreateAdminInput{
		UserID:   *userID,
		Role:     *role,
		Password: *password,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "create admin failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("admin %d created for user %d with role %s\n", admin.ID, admin.UserID, admin.Role)
}
