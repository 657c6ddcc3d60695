package domain

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Location identifies one of the shop's fixed sites.
type Location string

func ParseLocation(s string, known []Location) (Location, bool) {
	l := Location(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range known {
		if k == l {
			return l, true
		}
	}
	return "", false
}

type Staff struct {
	bun.BaseModel `bun:"table:staff"`

	ID        string    `bun:"id,pk"`
	Name      string    `bun:"name,notnull"`
	Location  Location  `bun:"location,notnull"`
	Active    bool      `bun:"active,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
