package store

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"portfolio-app/internal/domain/settings"
)

// Theme returns the stored theme, filling unset fields with defaults.
func (s *Store) Theme(ctx context.Context) (settings.ThemeSettings, error) {
	theme := settings.DefaultTheme()

	var row settings.Setting
	err := s.conn(ctx).Where(&settings.Setting{Key: settings.ThemeKey}).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return theme, nil
	}
	if err != nil {
		return theme, storeErr("load theme", err)
	}

	if err := json.Unmarshal(row.Value, &theme); err != nil {
		return settings.DefaultTheme(), storeErr("decode theme", err)
	}
	return theme, nil
}

func (s *Store) SaveTheme(ctx context.Context, theme settings.ThemeSettings) error {
	raw, err := json.Marshal(theme)
	if err != nil {
		return storeErr("encode theme", err)
	}

	row := settings.Setting{Key: settings.ThemeKey, Value: datatypes.JSON(raw)}
	err = s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	return storeErr("save theme", err)
}
