package types

import "time"

const ReleaseDateLayout = "2006-01-02"

type ReleasePlan struct {
	ID          string    `json:"id"`
	App         string    `json:"app"`
	Version     string    `json:"version"`
	ReleaseDate string    `json:"release_date"`
	CreatedBy   string    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
