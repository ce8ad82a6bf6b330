package slack

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/welcomebot/pkg/domain/model"
	"github.com/secmon-lab/welcomebot/pkg/domain/types"
	"github.com/slack-go/slack/slackevents"
)

// ErrMalformedPayload is returned when a webhook body is not a Slack Events API payload
var ErrMalformedPayload = goerr.New("malformed slack payload")

// Slack omits team_join from the inner event constants of slackevents
const typeTeamJoin = "team_join"

// Envelope is the outer Events API payload
type Envelope struct {
	Token     string          `json:"token" masq:"secret"`
	Type      string          `json:"type"`
	TeamID    string          `json:"team_id"`
	Challenge string          `json:"challenge"`
	Event     json.RawMessage `json:"event"`
}

// ParseEnvelope decodes a webhook body. It does not authenticate it.
func ParseEnvelope(body []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, goerr.Wrap(ErrMalformedPayload, "failed to decode slack payload", goerr.V("error", err.Error()))
	}
	if env.Type == "" {
		return nil, goerr.Wrap(ErrMalformedPayload, "slack payload has no type")
	}
	return &env, nil
}

// IsURLVerification reports whether this is the endpoint verification probe
func (x *Envelope) IsURLVerification() bool {
	return x.Type == string(slackevents.URLVerification)
}

// IsCallback reports whether this payload wraps an inner event
func (x *Envelope) IsCallback() bool {
	return x.Type == string(slackevents.CallbackEvent)
}

// WorkspaceID returns the team the event belongs to
func (x *Envelope) WorkspaceID() types.WorkspaceID {
	return types.WorkspaceID(x.TeamID)
}

// InnerEvent decodes the nested event into its variant
func (x *Envelope) InnerEvent() (model.Event, error) {
	if len(x.Event) == 0 || string(x.Event) == "null" {
		return nil, goerr.Wrap(ErrMalformedPayload, "event_callback has no event", goerr.V("team_id", x.TeamID))
	}

	var head struct {
		Type string `json:"type"`
	}
	if err := x.decodeEvent(&head); err != nil {
		return nil, err
	}

	switch head.Type {
	case typeTeamJoin, string(slackevents.ReactionAdded), string(slackevents.PinAdded), string(slackevents.Message):
	default:
		// Other event types are not decoded further; their shapes vary
		return &model.UnknownEvent{Type: head.Type}, nil
	}

	var ev innerEvent
	if err := x.decodeEvent(&ev); err != nil {
		return nil, err
	}

	switch ev.Type {
	case typeTeamJoin:
		return &model.MemberJoinedEvent{UserID: types.UserID(ev.User)}, nil

	case string(slackevents.ReactionAdded):
		return &model.ReactionAddedEvent{
			UserID: types.UserID(ev.User),
			Item:   ev.Item.ref(),
		}, nil

	case string(slackevents.PinAdded):
		return &model.PinAddedEvent{
			UserID: types.UserID(ev.User),
			Item:   ev.Item.ref(),
		}, nil

	default:
		msg := &model.MessageEvent{
			UserID:  types.UserID(ev.User),
			BotID:   ev.BotID,
			SubType: ev.SubType,
			Channel: ev.Channel,
			Text:    ev.Text,
		}
		if len(ev.Attachments) > 0 && ev.Attachments[0].IsShare {
			att := ev.Attachments[0]
			channel := att.ChannelID
			if channel == "" {
				channel = ev.Channel
			}
			msg.Shared = &model.MessageRef{Channel: channel, Timestamp: string(att.TS)}
		}
		return msg, nil
	}
}

func (x *Envelope) decodeEvent(v any) error {
	if err := json.Unmarshal(x.Event, v); err != nil {
		return goerr.Wrap(ErrMalformedPayload, "failed to decode inner event",
			goerr.V("team_id", x.TeamID),
			goerr.V("error", err.Error()),
		)
	}
	return nil
}

type innerEvent struct {
	Type        string            `json:"type"`
	SubType     string            `json:"subtype"`
	User        userField         `json:"user"`
	BotID       string            `json:"bot_id"`
	Channel     string            `json:"channel"`
	Text        string            `json:"text"`
	Item        *innerItem        `json:"item"`
	Attachments []innerAttachment `json:"attachments"`
}

type innerItem struct {
	Channel string `json:"channel"`
	TS      string `json:"ts"`
	Message *struct {
		TS string `json:"ts"`
	} `json:"message"`
}

// pin_added carries the timestamp under item.message, reaction_added under item
func (x *innerItem) ref() model.MessageRef {
	if x == nil {
		return model.MessageRef{}
	}
	ts := x.TS
	if x.Message != nil && x.Message.TS != "" {
		ts = x.Message.TS
	}
	return model.MessageRef{Channel: x.Channel, Timestamp: ts}
}

type innerAttachment struct {
	IsShare   bool    `json:"is_share"`
	ChannelID string  `json:"channel_id"`
	TS        tsField `json:"ts"`
}

// userField accepts both "U123" and {"id": "U123"}; team_join uses the latter
type userField string

func (x *userField) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*x = userField(s)
		return nil
	}

	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return goerr.Wrap(err, "user must be an ID or an object with id")
	}
	*x = userField(obj.ID)
	return nil
}

// tsField accepts a timestamp given as a string or as a bare number
type tsField string

func (x *tsField) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*x = tsField(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return goerr.Wrap(err, "ts must be a string or a number")
	}
	*x = tsField(n.String())
	return nil
}
