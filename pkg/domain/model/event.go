package model

import "github.com/secmon-lab/welcomebot/pkg/domain/types"

// Event is a Slack inner event the bot knows how to route. The set of
// implementations is closed; anything else arrives as UnknownEvent.
type Event interface {
	EventType() string
	event()
}

// MemberJoinedEvent is a team_join event
type MemberJoinedEvent struct {
	UserID types.UserID
}

// ReactionAddedEvent is a reaction_added event; Item is the reacted message
type ReactionAddedEvent struct {
	UserID types.UserID
	Item   MessageRef
}

// PinAddedEvent is a pin_added event; Item is the pinned message
type PinAddedEvent struct {
	UserID types.UserID
	Item   MessageRef
}

// MessageEvent is a message event. Shared is set when the message shares
// another message.
type MessageEvent struct {
	UserID  types.UserID
	BotID   string
	SubType string
	Channel string
	Text    string
	Shared  *MessageRef
}

// UnknownEvent is any inner event type the bot does not handle
type UnknownEvent struct {
	Type string
}

func (MemberJoinedEvent) EventType() string  { return "team_join" }
func (ReactionAddedEvent) EventType() string { return "reaction_added" }
func (PinAddedEvent) EventType() string      { return "pin_added" }
func (MessageEvent) EventType() string       { return "message" }
func (x UnknownEvent) EventType() string     { return x.Type }

func (MemberJoinedEvent) event()  {}
func (ReactionAddedEvent) event() {}
func (PinAddedEvent) event()      {}
func (MessageEvent) event()       {}
func (UnknownEvent) event()       {}
