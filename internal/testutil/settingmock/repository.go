package settingmock

import (
	"context"

	domain "cryptoboost/internal/domain/setting"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies setting.Repository.
// Get falls back to the defaults.
type Repo struct {
	GetFn  func(ctx context.Context) (*domain.Settings, error)
	SaveFn func(ctx context.Context, s *domain.Settings) error
}

func (m *Repo) Get(ctx context.Context) (*domain.Settings, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx)
	}
	s := domain.Defaults()
	return &s, nil
}

func (m *Repo) Save(ctx context.Context, s *domain.Settings) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, s)
	}
	return nil
}
