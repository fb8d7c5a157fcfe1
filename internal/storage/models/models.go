package models

import "time"

type SessionRecord struct {
	ID             string
	LearnerProfile string
	MaxRounds      int
	RoundsDone     int
	ZPDEstimate    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type InteractionRecord struct {
	ID            string
	SessionID     string
	Round         int
	Category      string
	Intensity     string
	Justification string
	Prompts       []string
	FollowUps     []string
	Conclusion    string
	StartedAt     time.Time
	ConcludedAt   time.Time
}

type ResponseRecord struct {
	ID            string
	InteractionID string
	Text          string
	Tag           string
	PatternReply  string
	CreatedAt     time.Time
}

type MapSnapshot struct {
	ID                string
	SessionID         string
	Round             int
	MapJSON           string
	ConceptCount      int
	RelationshipCount int
	ConnectivityRatio float64
	CreatedAt         time.Time
}
