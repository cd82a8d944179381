// Command token issues an access token for local testing against the API.
//
//	go run ./cmd/token -user <uuid> -role supervisor -division <uuid>
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	userID := flag.String("user", "", "user id (required)")
	role := flag.String("role", string(user.RoleEmployee), "admin, supervisor or employee")
	division := flag.String("division", "", "division id")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET_KEY")
	if *userID == "" || secret == "" {
		fmt.Fprintln(os.Stderr, "-user and JWT_SECRET_KEY are required")
		flag.Usage()
		os.Exit(2)
	}

	r := user.Role(*role)
	if _, known := user.RolePermissions[r]; !known {
		fmt.Fprintf(os.Stderr, "unknown role %q\n", *role)
		os.Exit(2)
	}

	id := user.Identity{UserID: *userID, Role: r}
	if *division != "" {
		id.DivisionID = division
	}

	token, expiresAt, err := jwt.NewJWTService(secret, *ttl).GenerateAccessToken(id)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to sign token:", err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires %s\n", time.Unix(expiresAt, 0).Format(time.RFC3339))
}
