package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"employee-review/internal/service"
)

type tokenConfig struct {
	Secret string        `env:"API_JWT_SECRET,required"`
	TTL    time.Duration `env:"API_TOKEN_TTL" envDefault:"24h"`
}

// issue_token imprime un token de operador para las rutas protegidas de la API.
func main() {
	_ = godotenv.Load()

	operator := flag.String("operator", "", "operator name stored in the token")
	flag.Parse()

	var cfg tokenConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatal(err)
	}
	if *operator == "" {
		fmt.Fprintln(os.Stderr, "usage: issue_token -operator <name>")
		os.Exit(2)
	}

	token, err := service.NewJWTService(cfg.Secret, cfg.TTL).Issue(*operator)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(token)
}
