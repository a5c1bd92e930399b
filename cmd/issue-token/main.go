package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/noah-isme/study-planner-api/internal/models"
	"github.com/noah-isme/study-planner-api/internal/service"
	"github.com/noah-isme/study-planner-api/pkg/config"
)

// issue-token prints a bearer token for a planner or admin, signed with JWT_SECRET.
func main() {
	user := flag.String("user", "", "user id stored as the plan owner")
	role := flag.String("role", "planner", "planner or admin")
	flag.Parse()

	if *user == "" {
		fmt.Fprintln(os.Stderr, "usage: issue-token -user <id> [-role planner|admin]")
		os.Exit(2)
	}
	r := models.UserRole(strings.ToUpper(*role))
	if r != models.RolePlanner && r != models.RoleAdmin {
		log.Fatalf("unknown role %q", *role)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	tokens := service.NewTokenService(service.TokenConfig{
		Secret: cfg.JWT.Secret,
		Issuer: "study-planner-api",
		Expiry: cfg.JWT.Expiration,
	})
	token, expiresAt, err := tokens.Issue(*user, r)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}
	fmt.Printf("%s\n# expires %s\n", token, expiresAt.Format("2006-01-02T15:04:05Z07:00"))
}
