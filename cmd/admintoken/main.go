// Command admintoken prints a bearer token for the capture server's
// destructive routes, signed with ADMIN_JWT_SECRET.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"capture-backend/internal/auth"
	"capture-backend/internal/config"
)

func main() {
	subject := flag.String("subject", "operator", "token subject, recorded as the actor in the audit log")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg, _ := config.Load()
	if cfg.AdminJWTSecret == "" {
		fmt.Fprintln(os.Stderr, "ADMIN_JWT_SECRET is not set")
		os.Exit(1)
	}

	token, err := auth.GenerateToken(cfg.AdminJWTSecret, *subject, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(token)
}
