// Command tokengen mints an access token signed with the server secret.
//
//	tokengen -user alice
//	tokengen -user root -admin -ttl 10m
//
// The secret comes from ARTVAULT_SECRET_KEY, falling back to the server default.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/artvault/internal/server/auth"
	"github.com/dmitrijs2005/artvault/internal/server/config"
)

func main() {
	fs := flag.NewFlagSet("tokengen", flag.ExitOnError)
	user := fs.String("user", "", "caller id stored in the token")
	admin := fs.Bool("admin", false, "grant the admin role")
	ttl := fs.Duration("ttl", 0, "token lifetime (default: server access token TTL)")
	_ = fs.Parse(os.Args[1:])

	if *user == "" {
		fs.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(nil)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *ttl == 0 {
		*ttl = cfg.AccessTokenValidityDuration
	}

	role := auth.RoleUser
	if *admin {
		role = auth.RoleAdmin
	}

	tok, err := auth.GenerateToken(*user, role, []byte(cfg.SecretKey), *ttl)
	if err != nil {
		log.Fatalf("generate token: %v", err)
	}
	fmt.Println(tok)
}
