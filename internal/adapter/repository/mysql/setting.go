package mysql

import (
	"context"
	"errors"

	settingDomain "cryptoboost/internal/domain/setting"
	"cryptoboost/internal/domain/store"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepository struct {
	db  *gorm.DB
	col *Collection[settingDomain.Settings]
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db, col: NewCollection[settingDomain.Settings](db)}
}

func (r *SettingRepository) Get(ctx context.Context) (*settingDomain.Settings, error) {
	s, err := r.col.ByID(ctx, settingDomain.SingletonID)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	// first boot: seed defaults, tolerating a concurrent seeder
	def := settingDomain.Defaults()
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&def).Error; err != nil {
		return nil, translate(err)
	}
	return r.col.ByID(ctx, settingDomain.SingletonID)
}

func (r *SettingRepository) Save(ctx context.Context, s *settingDomain.Settings) error {
	s.ID = settingDomain.SingletonID
	return translate(r.db.WithContext(ctx).Save(s).Error)
}
