// Package support covers the help desk: the chat assistant, location
// suggestions and contact messages answered by staff.
package support

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/giovaniif/motorent/domain/support"
	"github.com/giovaniif/motorent/protocols"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrEmptyQuery     = errors.New("query must not be empty")
	ErrInvalidMessage = errors.New("invalid support message")
)

var validate = validator.New()

type Support struct {
	assistant protocols.Assistant
	messages  support.Repository
	timeout   time.Duration
	now       func() time.Time
}

func NewSupport(assistant protocols.Assistant, messages support.Repository, timeout time.Duration) *Support {
	return &Support{assistant: assistant, messages: messages, timeout: timeout, now: time.Now}
}

func (s *Support) Ask(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrEmptyQuery
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.assistant.Answer(ctx, query)
}

func (s *Support) SuggestLocations(ctx context.Context, userLocation string) ([]string, error) {
	userLocation = strings.TrimSpace(userLocation)
	if userLocation == "" {
		return nil, ErrEmptyQuery
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	suggestions, err := s.assistant.SuggestLocations(ctx, userLocation)
	if err != nil {
		return nil, err
	}
	if suggestions == nil {
		suggestions = []string{}
	}
	return suggestions, nil
}

func (s *Support) Submit(ctx context.Context, input MessageInput) (*support.Message, error) {
	input.trim()
	if err := validate.Struct(input); err != nil {
		return nil, errors.Join(ErrInvalidMessage, err)
	}
	m := &support.Message{
		Id:        uuid.NewString(),
		UserId:    input.UserId,
		Name:      input.Name,
		Email:     input.Email,
		Subject:   input.Subject,
		Body:      input.Message,
		Status:    support.New,
		CreatedAt: s.now(),
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Support) List(ctx context.Context) ([]support.Message, error) {
	return s.messages.List(ctx)
}

func (s *Support) SetStatus(ctx context.Context, messageId, rawStatus string) (*support.Message, error) {
	status, err := support.ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	m, err := s.messages.Get(ctx, messageId)
	if err != nil {
		return nil, err
	}
	m.Status = status
	if err := s.messages.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Support) Reply(ctx context.Context, messageId, text string) (*support.Message, error) {
	m, err := s.messages.Get(ctx, messageId)
	if err != nil {
		return nil, err
	}
	if err := m.ApplyReply(text); err != nil {
		return nil, err
	}
	if err := s.messages.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

type MessageInput struct {
	UserId  string
	Name    string `validate:"required,min=2"`
	Email   string `validate:"required,email"`
	Subject string `validate:"required,min=3"`
	Message string `validate:"required,min=10"`
}

func (i *MessageInput) trim() {
	i.Name = strings.TrimSpace(i.Name)
	i.Email = strings.TrimSpace(i.Email)
	i.Subject = strings.TrimSpace(i.Subject)
	i.Message = strings.TrimSpace(i.Message)
}
