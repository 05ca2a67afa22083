package server

import (
	"context"
	"log/slog"
)

// Seeder is implemented by stores that can create demo content.
type Seeder interface {
	SeedDemo(ctx context.Context) (bool, error)
}

// SeedDemo creates the demo festival map if the store is empty.
// Idempotent: does nothing if any map exists.
func SeedDemo(ctx context.Context, logger *slog.Logger, s Seeder) error {
	seeded, err := s.SeedDemo(ctx)
	if err != nil {
		return err
	}
	if seeded {
		logger.Info("demo map created and activated")
	}
	return nil
}
