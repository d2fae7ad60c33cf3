package catalog

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const EventView = "view"

// AnalyticsEvent rows are append-only.
type AnalyticsEvent struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CollectionID string    `gorm:"type:varchar(36);not null;index" json:"collection_id"`
	EventType    string    `gorm:"not null;index" json:"event_type"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

func (AnalyticsEvent) TableName() string {
	return "analytics"
}

func (e *AnalyticsEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

type TopCollection struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	ViewCount int    `json:"view_count"`
}

type AnalyticsSummary struct {
	Counts         map[string]int  `json:"summary"`
	TopCollections []TopCollection `json:"topCollections"`
	TotalEvents    int             `json:"totalEvents"`
	Period         string          `json:"period"`
	PeriodDays     int             `json:"periodDays"`
}

// Summarize tallies events per type.
func Summarize(events []AnalyticsEvent, top []TopCollection, days int) AnalyticsSummary {
	counts := make(map[string]int)
	for _, e := range events {
		counts[e.EventType]++
	}
	if top == nil {
		top = []TopCollection{}
	}
	return AnalyticsSummary{
		Counts:         counts,
		TopCollections: top,
		TotalEvents:    len(events),
		Period:         periodLabel(days),
		PeriodDays:     days,
	}
}

func periodLabel(days int) string {
	return strconv.Itoa(days) + " days"
}
