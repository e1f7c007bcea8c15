package entity

import "time"

// ChatLog records one chat exchange for later review.
type ChatLog struct {
	Timestamp  time.Time         `bson:"timestamp"`
	PropertyID string            `bson:"propertyId"`
	Locale     string            `bson:"locale"`
	GuestMsg   string            `bson:"guestMsg"`
	BotMsg     string            `bson:"botMsg"`
	UsedAI     bool              `bson:"usedAi"`
	Extra      map[string]string `bson:"extra,omitempty"`
}
