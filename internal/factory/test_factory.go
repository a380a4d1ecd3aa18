package factory

import (
	"context"
	"testing"
	"time"

	"github.com/mcoot/arkham-companion/internal/config"
	"github.com/mcoot/arkham-companion/internal/dependencies/mocks"
	"github.com/mcoot/arkham-companion/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	Outbox    *mocks.RecordingMailer
}

// TestConfig returns the configuration NewTestApp uses, with uploads under dir
func TestConfig(dir string) *config.Config {
	cfg := config.Default()
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.AppURL = "https://arkham.test"
	cfg.Files.Dir = dir
	cfg.Files.MaxSize = 64 << 10
	return &cfg
}

// NewTestApp creates an in-memory App with a fixed clock and a recording mailer.
// Randomness stays real so session and player tokens never collide.
func NewTestApp(t testing.TB) *TestApp {
	t.Helper()

	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	outbox := mocks.NewRecordingMailer()

	app, err := New(context.Background(), TestConfig(t.TempDir()), testutil.NopLogger(),
		WithClock(mockClock),
		WithMailer(outbox),
	)
	if err != nil {
		t.Fatalf("build test app: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		Outbox:    outbox,
	}
}
