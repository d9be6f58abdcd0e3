package support

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	New        Status = "New"
	InProgress Status = "In Progress"
	Replied    Status = "Replied"
	Resolved   Status = "Resolved"
)

var (
	ErrNotFound      = errors.New("support message not found")
	ErrEmptyReply    = errors.New("reply must not be empty")
	ErrInvalidStatus = errors.New("invalid support message status")
)

func (s Status) Valid() bool {
	switch s {
	case New, InProgress, Replied, Resolved:
		return true
	}
	return false
}

type Message struct {
	Id        string    `json:"id" bson:"_id"`
	UserId    string    `json:"userId,omitempty" bson:"user_id,omitempty"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	Subject   string    `json:"subject" bson:"subject"`
	Body      string    `json:"message" bson:"body"`
	Status    Status    `json:"status" bson:"status"`
	Reply     string    `json:"reply,omitempty" bson:"reply,omitempty"`
	CreatedAt time.Time `json:"timestamp" bson:"created_at"`
}

// ApplyReply records a staff answer and marks the message as replied.
func (m *Message) ApplyReply(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyReply
	}
	m.Reply = text
	m.Status = Replied
	return nil
}

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

type Repository interface {
	Create(ctx context.Context, m *Message) error
	Get(ctx context.Context, messageId string) (*Message, error)
	// List returns messages newest first.
	List(ctx context.Context) ([]Message, error)
	Update(ctx context.Context, m *Message) error
}
