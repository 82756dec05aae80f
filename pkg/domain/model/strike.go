package model

import (
	"time"

	"github.com/modsec-lab/aegis/pkg/domain/types"
)

// BanStrikeCount is the strike tier at which a user is banned
const BanStrikeCount = 3

// StrikeRecord tracks how many adjudicated violations a user has accumulated
type StrikeRecord struct {
	UserID    types.UserID
	Count     int
	UpdatedAt time.Time
}

// Banned reports whether the user has reached the ban tier
func (s *StrikeRecord) Banned() bool {
	return s.Count >= BanStrikeCount
}
