package settings

import (
	"fmt"
	"time"

	"gorm.io/datatypes"

	"portfolio-app/internal/domain/catalog"
)

const ThemeKey = "theme"

const (
	DefaultGridSpacing      = 16
	DefaultAnimationSpeedMs = 300

	maxGridSpacing      = 128
	maxAnimationSpeedMs = 5000
)

// Setting is a key/value row; Value holds arbitrary JSON.
type Setting struct {
	Key       string         `gorm:"type:varchar(64);primaryKey" json:"key"`
	Value     datatypes.JSON `gorm:"not null" json:"value"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type ThemeSettings struct {
	GridSpacing      int `json:"gridSpacing"`
	AnimationSpeedMs int `json:"animationSpeed"`
}

func DefaultTheme() ThemeSettings {
	return ThemeSettings{
		GridSpacing:      DefaultGridSpacing,
		AnimationSpeedMs: DefaultAnimationSpeedMs,
	}
}

func (t ThemeSettings) Validate() error {
	if t.GridSpacing < 0 || t.GridSpacing > maxGridSpacing {
		return fmt.Errorf("%w: gridSpacing must be between 0 and %d", catalog.ErrValidation, maxGridSpacing)
	}
	if t.AnimationSpeedMs < 0 || t.AnimationSpeedMs > maxAnimationSpeedMs {
		return fmt.Errorf("%w: animationSpeed must be between 0 and %d", catalog.ErrValidation, maxAnimationSpeedMs)
	}
	return nil
}
