package domain

import "time"

// GenerationRecord represents a finished generation kept in the history
type GenerationRecord struct {
	ID             int64
	RunID          string
	Token          string
	Prompt         string
	NegativePrompt string
	Steps          int
	Model          string
	Size           string
	Orientation    string
	ImageID        uint64
	CreditsUsed    uint64
	OutputPath     string
	CreatedAt      time.Time
}
