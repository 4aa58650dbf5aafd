package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// CardsPack is a generated flashcard deck for one (owner, file) pair.
// Same lifecycle as Quiz — at most one per (UserID, FileID), replaced
// wholesale on regeneration — but packs carry no score.
type CardsPack struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	FileID    string    `json:"fileId"`
	Cards     string    `json:"cards"`
	CreatedAt time.Time `json:"createdAt"`
}

// Card is one flashcard of a pack payload.
type Card struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// ParseCards parses and shape-validates a flashcard payload.
// Both sides of every card must be non-empty.
func ParseCards(payload string) ([]Card, error) {
	var cards []Card
	if err := json.Unmarshal([]byte(payload), &cards); err != nil {
		return nil, fmt.Errorf("model: parsing cards: %w", err)
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("model: cards payload contains no cards")
	}
	for i, c := range cards {
		if c.Front == "" || c.Back == "" {
			return nil, fmt.Errorf("model: card %d has an empty side", i)
		}
	}
	return cards, nil
}
