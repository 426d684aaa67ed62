// Package chat contains conversations and their messages.
package chat

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/alfred/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	MaxTitleLength   = 200
	AutoTitleLength  = 60
	MaxMessageLength = 32 * 1024
	// HistoryWindow is how many prior messages are sent to the model
	HistoryWindow = 40
)

// Conversation is a chat thread owned by a user
type Conversation struct {
	shared.OwnedAggregateRoot
	Title         string
	Facet         string
	PersonaID     *uuid.UUID
	Pinned        bool
	LastMessageAt *time.Time
}

// NewConversation creates a conversation. An empty title is filled from the first message.
func NewConversation(ownerID uuid.UUID, title, facet string, personaID *uuid.UUID) (*Conversation, error) {
	title = strings.TrimSpace(title)
	if err := validateTitle(title, true); err != nil {
		return nil, err
	}
	c := &Conversation{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		Title:              title,
		Facet:              facet,
		PersonaID:          personaID,
	}
	return c, nil
}

// Rename changes the title
func (c *Conversation) Rename(title string) error {
	title = strings.TrimSpace(title)
	if err := validateTitle(title, false); err != nil {
		return err
	}
	c.Title = title
	c.IncrementVersion()
	return nil
}

// SetFacet switches the prompt mode
func (c *Conversation) SetFacet(facet string) {
	c.Facet = facet
	c.IncrementVersion()
}

// SetPersona attaches or clears the persona
func (c *Conversation) SetPersona(personaID *uuid.UUID) {
	c.PersonaID = personaID
	c.IncrementVersion()
}

// SetPinned pins or unpins the conversation
func (c *Conversation) SetPinned(pinned bool) {
	c.Pinned = pinned
	c.IncrementVersion()
}

// RecordActivity stamps the last message time and auto-titles untitled threads
func (c *Conversation) RecordActivity(at time.Time, firstUserMessage string) {
	c.LastMessageAt = &at
	if c.Title == "" {
		c.Title = DeriveTitle(firstUserMessage)
	}
	c.IncrementVersion()
}

// DeriveTitle takes the first non-empty line of text, cut to AutoTitleLength runes
func DeriveTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "#>*- \t"))
		if line == "" {
			continue
		}
		if utf8.RuneCountInString(line) <= AutoTitleLength {
			return line
		}
		runes := []rune(line)
		cut := strings.TrimSpace(string(runes[:AutoTitleLength-1]))
		return cut + "…"
	}
	return "New conversation"
}

func validateTitle(title string, allowEmpty bool) error {
	if title == "" && !allowEmpty {
		return shared.NewDomainError("INVALID_TITLE", "Title cannot be empty")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return shared.NewDomainError("INVALID_TITLE", "Title cannot exceed 200 characters")
	}
	return nil
}
