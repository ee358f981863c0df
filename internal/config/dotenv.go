package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads env files with priority: .env.<env>.local > .env.local > .env.<env> > .env
// godotenv.Load never overwrites variables that are already set,
// so real OS env vars always win. Returns the files actually loaded.
func LoadDotEnv(env string) []string {
	candidates := []string{".env.local", ".env"}
	if env != "" {
		candidates = []string{".env." + env + ".local", ".env.local", ".env." + env, ".env"}
	}
	var loaded []string
	for _, f := range candidates {
		if _, err := os.Stat(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	if len(loaded) > 0 {
		_ = godotenv.Load(loaded...)
	}
	return loaded
}
