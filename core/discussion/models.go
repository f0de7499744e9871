package discussion

import (
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/elimu/core"
)

// Categories
const (
	CategoryGeneral      = "general"
	CategoryQuestion     = "question"
	CategoryDiscussion   = "discussion"
	CategoryAnnouncement = "announcement"
)

// Reaction types
const (
	ReactionLike     = "like"
	ReactionHelpful  = "helpful"
	ReactionConfused = "confused"
)

type (
	Thread struct {
		ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
		Title        string             `json:"title" bson:"title"`
		Content      string             `json:"content" bson:"content"`
		Author       string             `json:"author" bson:"author"` // identity-provider id
		Course       primitive.ObjectID `json:"course" bson:"course"`
		Tags         []string           `json:"tags" bson:"tags,omitempty"`
		Category     string             `json:"category" bson:"category"`
		Attachments  []Attachment       `json:"attachments" bson:"attachments,omitempty"`
		Replies      []Reply            `json:"replies" bson:"replies"`
		Views        int                `json:"views" bson:"views"`
		IsPinned     bool               `json:"is_pinned" bson:"is_pinned"`
		IsLocked     bool               `json:"is_locked" bson:"is_locked"`
		LastActivity time.Time          `json:"last_activity" bson:"last_activity"`
		CreatedAt    time.Time          `json:"created_at" bson:"created_at"` // UTC
		UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"` // UTC
	}

	Reply struct {
		ID               primitive.ObjectID `json:"id" bson:"_id"`
		Author           string             `json:"author" bson:"author"`
		Content          string             `json:"content" bson:"content"`
		Attachments      []Attachment       `json:"attachments" bson:"attachments,omitempty"`
		Reactions        []Reaction         `json:"reactions" bson:"reactions"`
		IsAcceptedAnswer bool               `json:"is_accepted_answer" bson:"is_accepted_answer"`
		CreatedAt        time.Time          `json:"created_at" bson:"created_at"`
		UpdatedAt        time.Time          `json:"updated_at" bson:"updated_at"`
	}

	Reaction struct {
		User string `json:"user" bson:"user"`
		Type string `json:"type" bson:"type"`
	}

	Attachment struct {
		Filename string `json:"filename" bson:"filename"`
		URL      string `json:"url" bson:"url"`
		Type     string `json:"type" bson:"type"`
	}
)

func (t *Thread) replyIndex(id primitive.ObjectID) int {
	for i := range t.Replies {
		if t.Replies[i].ID == id {
			return i
		}
	}
	return -1
}

// ToggleReaction adds the (user, type) reaction, or removes it when already
// present.
func (r *Reply) ToggleReaction(userID, reactionType string) {
	for i, react := range r.Reactions {
		if react.User == userID && react.Type == reactionType {
			r.Reactions = append(r.Reactions[:i], r.Reactions[i+1:]...)
			return
		}
	}
	r.Reactions = append(r.Reactions, Reaction{User: userID, Type: reactionType})
}

// NewThread contains information needed to start a new Thread.
type NewThread struct {
	Title    string   `json:"title" validate:"required"`
	Content  string   `json:"content" validate:"required"`
	Course   string   `json:"course" validate:"required"`
	Tags     []string `json:"tags"`
	Category string   `json:"category" validate:"omitempty,oneof=general question discussion announcement"`
}

func (nt *NewThread) Validate(validate *validator.Validate) error {
	nt.Title = core.CleanString(nt.Title)
	nt.Content = core.CleanString(nt.Content)
	if nt.Category == "" {
		nt.Category = CategoryGeneral
	}
	return validate.Struct(nt)
}

// UpdateThread defines what information may be provided to modify an existing Thread.
type UpdateThread struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
	Category string   `json:"category" validate:"omitempty,oneof=general question discussion announcement"`
	IsPinned *bool    `json:"is_pinned"`
	IsLocked *bool    `json:"is_locked"`
}

func (ut *UpdateThread) Validate(validate *validator.Validate) error {
	ut.Title = core.CleanString(ut.Title)
	ut.Content = core.CleanString(ut.Content)
	return validate.Struct(ut)
}

func (ut *UpdateThread) Apply(t *Thread) {
	if ut.Title != "" {
		t.Title = ut.Title
	}
	if ut.Content != "" {
		t.Content = ut.Content
	}
	if ut.Tags != nil {
		t.Tags = ut.Tags
	}
	if ut.Category != "" {
		t.Category = ut.Category
	}
	if ut.IsPinned != nil {
		t.IsPinned = *ut.IsPinned
	}
	if ut.IsLocked != nil {
		t.IsLocked = *ut.IsLocked
	}
}

// NewReply is the payload for replying to a thread.
type NewReply struct {
	Content     string       `json:"content" validate:"required"`
	Attachments []Attachment `json:"attachments"`
}

func (nr *NewReply) Validate(validate *validator.Validate) error {
	nr.Content = core.CleanString(nr.Content)
	return validate.Struct(nr)
}

// ReactionInput is the payload for toggling a reaction on a reply.
type ReactionInput struct {
	Type string `json:"type" validate:"required,oneof=like helpful confused"`
}

func (ri *ReactionInput) Validate(validate *validator.Validate) error {
	return validate.Struct(ri)
}
