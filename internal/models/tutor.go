package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tutor message roles.
const (
	TutorRoleUser      = "user"
	TutorRoleAssistant = "assistant"
)

// TutorMessage is one turn in a user's AI tutor conversation, stored in the
// tutor_messages MongoDB collection.
type TutorMessage struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"user_id"`
	Role      string             `bson:"role" json:"role"`
	Text      string             `bson:"text" json:"text"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}
