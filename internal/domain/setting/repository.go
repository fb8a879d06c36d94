package setting

import "context"

type Repository interface {
	// Get returns the settings row, creating it from Defaults on first use.
	Get(ctx context.Context) (*Settings, error)
	Save(ctx context.Context, s *Settings) error
}
