package leave

import "time"

// Record は afastamento (休職・休暇) レコードです。同じ matrícula に複数のレコードが存在できます。
type Record struct {
	ID            int64
	Registration  string
	Description   string
	StartAt       time.Time
	EndAt         *time.Time
	UnitCNPJ      *string
	SituationCode *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

const (
	MaxRegistrationLength  = 13
	MaxDescriptionLength   = 50
	MaxCNPJLength          = 14
	MaxSituationCodeLength = 10
)
