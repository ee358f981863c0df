// Command issue-token prints an access token signed with the configured JWT
// secret. Operators use it to provision admin access to the CMS.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gtuventures/ventures-backend/internal/config"
	"github.com/gtuventures/ventures-backend/pkg/jwt"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}

	configPath := flag.String("config", fmt.Sprintf("configs/config.%s.yaml", env), "config file path")
	subject := flag.String("subject", "", "token subject, usually the operator's email")
	name := flag.String("name", "", "display name stored in the token")
	role := flag.String("role", jwt.RoleAdmin, "role claim")
	ttl := flag.Duration("ttl", 0, "token lifetime (defaults to jwt.expires_in)")
	flag.Parse()

	if *subject == "" {
		log.Fatal("-subject is required")
	}

	config.LoadDotEnv(env)
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.JWT.Secret == "" {
		log.Fatal("jwt secret is empty; set JWT_SECRET")
	}

	expiresIn := time.Duration(cfg.JWT.ExpiresIn) * time.Second
	if *ttl > 0 {
		expiresIn = *ttl
	}

	token, err := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, expiresIn).GenerateAccessToken(*subject, *name, *role)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}
	fmt.Println(token)
}
