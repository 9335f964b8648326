package domain

import "time"

// Tag labels tickets. Names are unique across the registry.
type Tag struct {
	ID        string
	Name      string
	Color     string
	CreatedAt time.Time
}
