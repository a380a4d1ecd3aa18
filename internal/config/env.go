package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LookupFunc matches os.LookupEnv
type LookupFunc func(key string) (string, bool)

// envBinding overrides one field from one variable
type envBinding struct {
	key   string
	apply func(value string) error
}

func bindings(c *Config) []envBinding {
	return []envBinding{
		{"ARKHAM_SERVER_HOST", setString(&c.Server.Host)},
		{"ARKHAM_SERVER_PORT", setInt(&c.Server.Port)},
		{"ARKHAM_SERVER_READ_TIMEOUT", setDuration(&c.Server.ReadTimeout)},
		{"ARKHAM_SERVER_WRITE_TIMEOUT", setDuration(&c.Server.WriteTimeout)},
		{"ARKHAM_SERVER_SHUTDOWN_TIMEOUT", setDuration(&c.Server.ShutdownTimeout)},

		{"ARKHAM_DATABASE_DRIVER", setString(&c.Database.Driver)},
		{"ARKHAM_DATABASE_URL", setString(&c.Database.URL)},
		{"ARKHAM_DATABASE_AUTO_MIGRATE", setBool(&c.Database.AutoMigrate)},

		{"ARKHAM_REDIS_URL", setString(&c.Redis.URL)},
		{"ARKHAM_REDIS_POOL_SIZE", setInt(&c.Redis.PoolSize)},
		{"ARKHAM_REDIS_CHANNEL_PREFIX", setString(&c.Redis.ChannelPrefix)},

		{"ARKHAM_AUTH_JWT_SECRET", setString(&c.Auth.JWTSecret)},
		{"ARKHAM_AUTH_JWT_EXPIRY", setDuration(&c.Auth.JWTExpiry)},
		{"ARKHAM_AUTH_TOKEN_LENGTH", setInt(&c.Auth.TokenLength)},
		{"ARKHAM_AUTH_APP_URL", setString(&c.Auth.AppURL)},
		{"ARKHAM_AUTH_ADMIN_NAME", setString(&c.Auth.Admin.Name)},
		{"ARKHAM_AUTH_ADMIN_EMAIL", setString(&c.Auth.Admin.Email)},
		{"ARKHAM_AUTH_ADMIN_PASSWORD", setString(&c.Auth.Admin.Password)},

		{"ARKHAM_GAME_MAX_PLAYERS", setInt(&c.Game.MaxPlayers)},
		{"ARKHAM_GAME_SESSION_TOKEN_LENGTH", setInt(&c.Game.SessionTokenLength)},

		{"ARKHAM_I18N_APP_LANGUAGE", setString(&c.I18n.AppLanguage)},
		{"ARKHAM_I18N_AVAILABLE_LANGUAGES", setList(&c.I18n.AvailableLanguages)},

		{"ARKHAM_FILES_DRIVER", setString(&c.Files.Driver)},
		{"ARKHAM_FILES_DIR", setString(&c.Files.Dir)},
		{"ARKHAM_FILES_BASE_URL", setString(&c.Files.BaseURL)},
		{"ARKHAM_FILES_MAX_SIZE", setInt64(&c.Files.MaxSize)},
		{"ARKHAM_FILES_S3_BUCKET", setString(&c.Files.S3.Bucket)},
		{"ARKHAM_FILES_S3_REGION", setString(&c.Files.S3.Region)},
		{"ARKHAM_FILES_S3_ENDPOINT", setString(&c.Files.S3.Endpoint)},
		{"ARKHAM_FILES_S3_PUBLIC_URL", setString(&c.Files.S3.PublicURL)},

		{"ARKHAM_MAIL_DRIVER", setString(&c.Mail.Driver)},
		{"ARKHAM_MAIL_HOST", setString(&c.Mail.Host)},
		{"ARKHAM_MAIL_PORT", setInt(&c.Mail.Port)},
		{"ARKHAM_MAIL_USERNAME", setString(&c.Mail.Username)},
		{"ARKHAM_MAIL_PASSWORD", setString(&c.Mail.Password)},
		{"ARKHAM_MAIL_FROM", setString(&c.Mail.From)},

		{"ARKHAM_LOG_LEVEL", setString(&c.Log.Level)},
		{"ARKHAM_LOG_FORMAT", setString(&c.Log.Format)},

		{"ARKHAM_NOTIFY_CLEANUP_SCHEDULE", setString(&c.Notify.CleanupSchedule)},
	}
}

func applyEnv(c *Config, lookup LookupFunc) error {
	for _, b := range bindings(c) {
		value, ok := lookup(b.key)
		if !ok {
			continue
		}
		if err := b.apply(strings.TrimSpace(value)); err != nil {
			return fmt.Errorf("%s: %w", b.key, err)
		}
	}
	return nil
}

func setString(dst *string) func(string) error {
	return func(v string) error {
		*dst = v
		return nil
	}
}

func setInt(dst *int) func(string) error {
	return func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*dst = n
		return nil
	}
}

func setInt64(dst *int64) func(string) error {
	return func(v string) error {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}
		*dst = n
		return nil
	}
}

func setBool(dst *bool) func(string) error {
	return func(v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*dst = b
		return nil
	}
}

func setDuration(dst *time.Duration) func(string) error {
	return func(v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*dst = d
		return nil
	}
}

// setList splits a comma separated value, dropping blanks
func setList(dst *[]string) func(string) error {
	return func(v string) error {
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		*dst = out
		return nil
	}
}
