package model

import (
	"github.com/m-mizutani/goerr/v2"
)

// StepID identifies one onboarding tutorial step
type StepID string

const (
	StepReaction StepID = "reaction"
	StepPin      StepID = "pin"
	StepShare    StepID = "share"
)

// StepIDs lists all tutorial steps in display order. A step's position in
// this list is its index in every Progress.
var StepIDs = []StepID{StepReaction, StepPin, StepShare}

// ErrUnknownStep is returned for a StepID outside StepIDs
var ErrUnknownStep = goerr.New("unknown tutorial step")

// Index returns the fixed position of the step in a Progress
func (x StepID) Index() (int, error) {
	for i, id := range StepIDs {
		if id == x {
			return i, nil
		}
	}
	return -1, goerr.Wrap(ErrUnknownStep, "step has no index", goerr.V("step", x))
}

// Validate checks if the StepID is one of StepIDs
func (x StepID) Validate() error {
	_, err := x.Index()
	return err
}

const (
	IconPending   = ":white_large_square:"
	IconCompleted = ":white_check_mark:"

	DefaultPendingColor   = "#e8e8e8"
	DefaultCompletedColor = "#439FE0"
)

// TutorialStep is one attachment of the tutorial message
type TutorialStep struct {
	ID             StepID `json:"id" firestore:"id" toml:"id"`
	Text           string `json:"text" firestore:"text" toml:"text"`
	Color          string `json:"color" firestore:"color" toml:"color"`
	CompletedColor string `json:"completed_color" firestore:"completed_color" toml:"completed_color"`
	Completed      bool   `json:"completed" firestore:"completed" toml:"-"`
}

// Icon returns the checkbox emoji matching the completion state
func (x TutorialStep) Icon() string {
	if x.Completed {
		return IconCompleted
	}
	return IconPending
}

// HighlightColor returns the attachment border color matching the completion state
func (x TutorialStep) HighlightColor() string {
	if x.Completed {
		return x.CompletedColor
	}
	return x.Color
}

// TutorialTemplate is the read-only description of the tutorial. Every user
// gets a Progress cloned from it.
type TutorialTemplate struct {
	WelcomeText string         `toml:"welcome_text"`
	Steps       []TutorialStep `toml:"step"`
}

// DefaultTutorialTemplate returns the built-in tutorial
func DefaultTutorialTemplate() *TutorialTemplate {
	return &TutorialTemplate{
		WelcomeText: "Welcome to Slack! We're so glad you're here.\nGet started by completing the steps below.",
		Steps: []TutorialStep{
			{
				ID:             StepReaction,
				Text:           "*Add an emoji reaction to this message* :thinking_face:\nYou can quickly respond to any message on Slack with an emoji reaction. Reactions can be used for any purpose: voting, checking off to-do items, showing excitement.",
				Color:          DefaultPendingColor,
				CompletedColor: DefaultCompletedColor,
			},
			{
				ID:             StepPin,
				Text:           "*Pin this message* :round_pushpin:\nImportant messages and files can be pinned to the details pane in any channel or direct message, including group messages, for easy reference.",
				Color:          DefaultPendingColor,
				CompletedColor: DefaultCompletedColor,
			},
			{
				ID:             StepShare,
				Text:           "*Share this message* :mailbox_with_mail:\nSharing a message lets you bring it into another conversation with your own comment attached.",
				Color:          DefaultPendingColor,
				CompletedColor: DefaultCompletedColor,
			},
		},
	}
}

// Validate checks the template lists exactly StepIDs, in order
func (x *TutorialTemplate) Validate() error {
	if x.WelcomeText == "" {
		return goerr.New("welcome text is required")
	}
	if len(x.Steps) != len(StepIDs) {
		return goerr.New("tutorial must define every step exactly once",
			goerr.V("expected", len(StepIDs)),
			goerr.V("actual", len(x.Steps)),
		)
	}
	for i, step := range x.Steps {
		if step.ID != StepIDs[i] {
			return goerr.New("tutorial step out of order",
				goerr.V("index", i),
				goerr.V("expected", StepIDs[i]),
				goerr.V("actual", step.ID),
			)
		}
		if step.Text == "" {
			return goerr.New("tutorial step text is required", goerr.V("step", step.ID))
		}
		if step.Completed {
			return goerr.New("tutorial template step must not be completed", goerr.V("step", step.ID))
		}
	}
	return nil
}

// NewProgress returns a fresh Progress with every step incomplete
func (x *TutorialTemplate) NewProgress() *Progress {
	steps := make([]TutorialStep, len(x.Steps))
	copy(steps, x.Steps)
	for i := range steps {
		steps[i].Completed = false
		if steps[i].Color == "" {
			steps[i].Color = DefaultPendingColor
		}
		if steps[i].CompletedColor == "" {
			steps[i].CompletedColor = DefaultCompletedColor
		}
	}
	return &Progress{Steps: steps}
}

// Progress is a user's own copy of the tutorial. Steps only move from
// incomplete to complete.
type Progress struct {
	Steps []TutorialStep `json:"steps" firestore:"steps"`
}

// Clone returns a deep copy
func (x *Progress) Clone() *Progress {
	if x == nil {
		return nil
	}
	steps := make([]TutorialStep, len(x.Steps))
	copy(steps, x.Steps)
	return &Progress{Steps: steps}
}

// Complete marks the step complete. It returns false without error when the
// step was already complete.
func (x *Progress) Complete(id StepID) (bool, error) {
	idx, err := id.Index()
	if err != nil {
		return false, err
	}
	if idx >= len(x.Steps) {
		return false, goerr.New("progress has no such step", goerr.V("step", id), goerr.V("steps", len(x.Steps)))
	}
	if x.Steps[idx].Completed {
		return false, nil
	}
	x.Steps[idx].Completed = true
	return true, nil
}

// IsComplete reports whether the step has been completed
func (x *Progress) IsComplete(id StepID) bool {
	idx, err := id.Index()
	if err != nil || idx >= len(x.Steps) {
		return false
	}
	return x.Steps[idx].Completed
}

// Finished reports whether every step is complete
func (x *Progress) Finished() bool {
	for _, step := range x.Steps {
		if !step.Completed {
			return false
		}
	}
	return len(x.Steps) > 0
}
