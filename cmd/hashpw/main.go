// Command hashpw generates a bcrypt hash for the admin password. The output
// is meant to be placed in ADMIN_PASSWORD_HASH.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/mapda-dev/mapda-api/internal/config"
	"github.com/mapda-dev/mapda-api/internal/utils"
	"github.com/sethvargo/go-envconfig"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <password>\n", os.Args[0])
		os.Exit(2)
	}

	var sec config.SecurityConfig
	if err := envconfig.Process(context.Background(), &sec); err != nil {
		log.Fatalf("Failed to load security configuration: %v", err)
	}

	hash, err := utils.HashPassword(os.Args[1], sec.BCryptCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	fmt.Println(hash)
}
