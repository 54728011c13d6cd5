// @title           cardhub API
// @version         1.0
// @description     Clients, cards and card contracts of a credit-card issuer.
// @BasePath        /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"flag"
	"fmt"
	"os"

	"cardhub/internal/app"
	"cardhub/internal/config"
)

func main() {
	path := flag.String("config", envOr("CARDHUB_CONFIG", config.DefaultPath), "path to the YAML config")
	flag.Parse()

	if err := app.Run(*path); err != nil {
		fmt.Fprintln(os.Stderr, "cardhub:", err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
