// Command devtoken prints a bearer token for local testing. Real tokens
// come from the auth service.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/ikkim/agroshop-backend/config"
	"github.com/ikkim/agroshop-backend/internal/app/model"
	"github.com/ikkim/agroshop-backend/pkg/util"
)

func main() {
	userID := flag.Uint("user", 1, "user id")
	email := flag.String("email", "dev@example.com", "user email")
	role := flag.String("role", string(model.RoleUser), "user or admin")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}
	if cfg.Server.Environment == "production" {
		log.Fatal("devtoken is disabled in production")
	}

	tokens, err := util.GenerateTokenPair(uint(*userID), *email, *role, cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry, cfg.JWT.RefreshTokenExpiry)
	if err != nil {
		log.Fatal("Failed to generate token: ", err)
	}

	fmt.Println(tokens.AccessToken)
}
