package notification

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event kinds
const (
	TypeNewReply          = "new_reply"
	TypeNewAssignment     = "new_assignment"
	TypeAssignmentGraded  = "assignment_graded"
	TypeDiscussionMention = "discussion_mention"
)

// Source types
const (
	SourceDiscussion = "Discussion"
	SourceAssignment = "Assignment"
)

type (
	Notification struct {
		ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
		UserID     string             `json:"user_id" bson:"user_id"`
		Type       string             `json:"type" bson:"type"`
		SourceID   primitive.ObjectID `json:"source_id" bson:"source_id"`
		SourceType string             `json:"source_type" bson:"source_type"`
		Message    string             `json:"message,omitempty" bson:"message,omitempty"`
		Link       string             `json:"link,omitempty" bson:"link,omitempty"`
		IsRead     bool               `json:"is_read" bson:"is_read"`
		CreatedAt  time.Time          `json:"created_at" bson:"created_at"` // UTC
	}

	// NewNotification contains information needed to record a notification.
	NewNotification struct {
		UserID     string
		Type       string
		SourceID   primitive.ObjectID
		SourceType string
		Message    string
		Link       string
	}
)
