package cli

import (
	"os"
	"path/filepath"
	"strings"
)

// Config holds CLI configuration
type Config struct {
	ServerURL       string
	Token           string
	TokenFile       string
	PlayerToken     string
	PlayerTokenFile string
	Language        string
	Output          string
	Verbose         bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:       getEnvOrDefault("ARKHAM_SERVER", "http://localhost:8080"),
		Token:           os.Getenv("ARKHAM_TOKEN"),
		TokenFile:       getEnvOrDefault("ARKHAM_TOKEN_FILE", defaultStateFile("token")),
		PlayerToken:     os.Getenv("ARKHAM_PLAYER_TOKEN"),
		PlayerTokenFile: getEnvOrDefault("ARKHAM_PLAYER_TOKEN_FILE", defaultStateFile("player-token")),
		Language:        os.Getenv("ARKHAM_LANGUAGE"),
		Output:          "text",
		Verbose:         false,
	}
}

// LoadTokens fills the account and player tokens from their files when not already set
func (c *Config) LoadTokens() error {
	if c.Token == "" {
		token, err := readState(c.TokenFile)
		if err != nil {
			return err
		}
		c.Token = token
	}
	if c.PlayerToken == "" {
		token, err := readState(c.PlayerTokenFile)
		if err != nil {
			return err
		}
		c.PlayerToken = token
	}
	return nil
}

// SaveToken saves the account token to the token file
func (c *Config) SaveToken(token string) error {
	c.Token = token
	return writeState(c.TokenFile, token)
}

// SavePlayerToken saves the player token to the player token file
func (c *Config) SavePlayerToken(token string) error {
	c.PlayerToken = token
	return writeState(c.PlayerTokenFile, token)
}

// ClearPlayerToken forgets the saved player token
func (c *Config) ClearPlayerToken() error {
	c.PlayerToken = ""
	if err := os.Remove(c.PlayerTokenFile); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func readState(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func writeState(path, value string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(value), 0600)
}

func defaultStateFile(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".arkham", name)
	}
	return filepath.Join(home, ".arkham", name)
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
