package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Record struct {
	Key       string    `gorm:"column:record_key;primaryKey;size:255" json:"key"`
	Value     string    `gorm:"column:value;type:text;not null"       json:"value"`
	UpdatedAt time.Time `gorm:"column:updated_at"                     json:"updated_at"`
}

func (Record) TableName() string {
	return "kv_records"
}

type GormStore struct {
	DB *gorm.DB
}

func (s *GormStore) Get(ctx context.Context, key string) (string, bool, error) {
	var rec Record
	if err := s.DB.WithContext(ctx).Where("record_key = ?", key).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return rec.Value, true, nil
}

func (s *GormStore) Set(ctx context.Context, key, value string) error {
	rec := Record{Key: key, Value: value}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "record_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
}

func (s *GormStore) Remove(ctx context.Context, key string) error {
	return s.DB.WithContext(ctx).Where("record_key = ?", key).Delete(&Record{}).Error
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
