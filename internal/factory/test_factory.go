package factory

import (
	"time"

	"github.com/brentkao/roomcoord/internal/config"
	"github.com/brentkao/roomcoord/internal/dependencies/mocks"
	"github.com/brentkao/roomcoord/internal/storage/memory"
	"github.com/brentkao/roomcoord/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	Memory     *memory.Storage
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App backed by memory storage with a mocked clock
// and random source
func NewTestApp() *TestApp {
	return NewTestAppWithConfig(config.Default())
}

// NewTestAppWithConfig is NewTestApp with an explicit configuration
func NewTestAppWithConfig(cfg config.Config) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, cfg, testutil.NopLogger())

	return &TestApp{
		App:        app,
		Memory:     store,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
