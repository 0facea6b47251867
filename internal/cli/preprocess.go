package cli

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Environment variables read for portal credentials.
const (
	EnvUsername = "LANZOU_USERNAME"
	EnvPassword = "LANZOU_PASSWORD"
	EnvCookie   = "LANZOU_COOKIE"
)

// loadDotEnv loads .env from the current working directory if it exists.
// Variables already set in the environment win.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}
	_ = godotenv.Load(filepath.Join(cwd, ".env")) // no error if .env doesn't exist
}

// resolveCredentials fills empty flags from the environment.
func resolveCredentials(username, password string) (string, string, error) {
	if username == "" || password == "" {
		loadDotEnv()
	}
	if username == "" {
		username = os.Getenv(EnvUsername)
	}
	if password == "" {
		password = os.Getenv(EnvPassword)
	}
	if username == "" {
		return "", "", errors.New("no username provided. Use --username or set " + EnvUsername + " in your shell or .env file")
	}
	if password == "" {
		return "", "", errors.New("no password provided. Use --password or set " + EnvPassword + " in your shell or .env file")
	}
	return username, password, nil
}

// resolveCookie returns arg, or the cookie from the environment.
func resolveCookie(arg string) (string, error) {
	if arg != "" {
		return arg, nil
	}
	loadDotEnv()
	if c := os.Getenv(EnvCookie); c != "" {
		return c, nil
	}
	return "", errors.New("no cookie provided. Pass it as an argument or set " + EnvCookie + " in your shell or .env file")
}
