// Package flow drives linear multi-step conversations: each flow is an
// ordered list of steps with validators, an accumulating bag of collected
// values, and a terminal action. Per-user progress lives in a keyed session
// store, never in package globals.
package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/foodfit/foodfitbot/core/logger"
	"github.com/foodfit/foodfitbot/core/telegram/state"
)

// Input is one inbound user event, already stripped of transport details.
type Input struct {
	Text    string
	PhotoID string
	Contact string
}

// Bag accumulates validated step values keyed by Step.Key.
type Bag map[string]string

// Int reads a bag value as an integer, defaulting to 0.
func (b Bag) Int(key string) int {
	n, _ := strconv.Atoi(b[key])
	return n
}

// Responder delivers prompts back to the user. The bot adapter implements
// it over its transport context.
type Responder interface {
	Prompt(text string) error
}

// ValidateFunc checks one input against the step's expectation. It returns
// the normalized value to store, or an error whose message is re-prompted
// to the user verbatim.
type ValidateFunc func(in Input) (string, error)

// Step is one stage of a flow.
type Step struct {
	// State identifies the step in the session store.
	State state.State
	// Key names the bag entry the validated value is stored under.
	Key string
	// Prompt is sent when the flow advances to this step. Leave empty
	// when the previous step's After hook already prompted.
	Prompt string
	// Validate checks the input; nil accepts any text.
	Validate ValidateFunc
	// After runs once this step's value is accepted, before the next
	// prompt. It may enrich the bag and send its own messages.
	After func(ctx context.Context, out Responder, userID int64, bag Bag) error
}

// Flow is a named linear sequence of steps with a terminal action.
type Flow struct {
	Name  string
	Steps []Step
	// Done fires after the final step's value is accepted. The session
	// is cleared afterwards regardless of the returned error.
	Done func(ctx context.Context, out Responder, userID int64, bag Bag) error
	// CancelText is sent when the user cancels mid-flow.
	CancelText string
}

const (
	bagKey  = "flow.bag"
	nameKey = "flow.name"
)

// Runner dispatches inbound events to the active flow of each user.
type Runner struct {
	sessions state.Manager
	flows    map[string]*Flow
	steps    map[state.State]stepRef
	cancels  []string
}

type stepRef struct {
	flow *Flow
	idx  int
}

// NewRunner builds a Runner over a session store. cancelLabels are the
// exact inputs (case-insensitive) that abort any flow.
func NewRunner(sessions state.Manager, cancelLabels ...string) *Runner {
	if len(cancelLabels) == 0 {
		cancelLabels = []string{"отмена", "❌ отмена", "/cancel"}
	}
	return &Runner{
		sessions: sessions,
		flows:    make(map[string]*Flow),
		steps:    make(map[state.State]stepRef),
		cancels:  cancelLabels,
	}
}

// Register adds a flow. Step states must be unique across all flows.
func (r *Runner) Register(f *Flow) error {
	if f == nil || f.Name == "" || len(f.Steps) == 0 || f.Done == nil {
		return fmt.Errorf("flow: invalid flow registration")
	}
	if _, exists := r.flows[f.Name]; exists {
		return fmt.Errorf("flow: duplicate flow %q", f.Name)
	}
	for i, s := range f.Steps {
		if s.State == "" || s.State == state.StateIdle {
			return fmt.Errorf("flow %q: step %d has no state", f.Name, i)
		}
		if _, exists := r.steps[s.State]; exists {
			return fmt.Errorf("flow %q: duplicate step state %q", f.Name, s.State)
		}
		r.steps[s.State] = stepRef{flow: f, idx: i}
	}
	r.flows[f.Name] = f
	return nil
}

// InProgress reports whether the user has an active flow.
func (r *Runner) InProgress(userID int64) bool {
	return r.sessions.HasState(userID)
}

// Start begins the named flow for a user, replacing any active one.
func (r *Runner) Start(ctx context.Context, out Responder, userID int64, name string) error {
	f, ok := r.flows[name]
	if !ok {
		return fmt.Errorf("flow: unknown flow %q", name)
	}
	r.sessions.Clear(userID)
	r.sessions.SetState(userID, f.Steps[0].State)
	r.sessions.SetTemp(userID, nameKey, name)
	r.sessions.SetTemp(userID, bagKey, Bag{})
	logger.Debug(ctx, "flow", "start",
		slog.Int64("user_id", userID),
		slog.String("flow", name),
	)
	return out.Prompt(f.Steps[0].Prompt)
}

// Abort clears the user's active flow without firing the terminal action.
func (r *Runner) Abort(userID int64) {
	r.sessions.Clear(userID)
}

// Seed stores a value into the active flow's bag from outside the step
// sequence, e.g. an id chosen via an inline button.
func (r *Runner) Seed(userID int64, key, value string) {
	bag := r.bag(userID)
	bag[key] = value
	r.sessions.SetTemp(userID, bagKey, bag)
}

// Process advances the user's active flow by one event. Invalid input
// re-prompts and leaves both the step and the bag untouched; valid input
// stores the value and advances exactly one step; the final step fires
// the terminal action and clears the session.
func (r *Runner) Process(ctx context.Context, out Responder, userID int64, in Input) error {
	current := r.sessions.GetState(userID)
	if current == state.StateIdle {
		return nil
	}
	ref, ok := r.steps[current]
	if !ok {
		// Stale state from a removed flow; drop it.
		r.sessions.Clear(userID)
		return nil
	}
	f, step := ref.flow, ref.flow.Steps[ref.idx]

	if r.isCancel(in.Text) {
		r.sessions.Clear(userID)
		logger.Debug(ctx, "flow", "cancel",
			slog.Int64("user_id", userID),
			slog.String("flow", f.Name),
		)
		text := f.CancelText
		if text == "" {
			text = "Действие отменено"
		}
		return out.Prompt(text)
	}

	validate := step.Validate
	if validate == nil {
		validate = NonEmptyText("Пожалуйста, отправьте текст")
	}
	value, err := validate(in)
	if err != nil {
		return out.Prompt(err.Error())
	}

	bag := r.bag(userID)
	if step.Key != "" {
		bag[step.Key] = value
	}
	r.sessions.SetTemp(userID, bagKey, bag)

	if step.After != nil {
		if err := step.After(ctx, out, userID, bag); err != nil {
			logger.Warn(ctx, "flow", "after_hook.fail",
				slog.Int64("user_id", userID),
				slog.String("flow", f.Name),
				slog.String("err", err.Error()),
			)
		}
	}

	if ref.idx == len(f.Steps)-1 {
		doneErr := f.Done(ctx, out, userID, bag)
		r.sessions.Clear(userID)
		logger.Debug(ctx, "flow", "done",
			slog.Int64("user_id", userID),
			slog.String("flow", f.Name),
			slog.String("status", logger.Status(doneErr)),
		)
		return doneErr
	}

	next := f.Steps[ref.idx+1]
	r.sessions.SetState(userID, next.State)
	if next.Prompt == "" {
		return nil
	}
	return out.Prompt(next.Prompt)
}

func (r *Runner) bag(userID int64) Bag {
	if v, ok := r.sessions.GetTemp(userID, bagKey); ok {
		if bag, ok := v.(Bag); ok {
			return bag
		}
	}
	return Bag{}
}

func (r *Runner) isCancel(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	for _, c := range r.cancels {
		if t == strings.ToLower(c) {
			return true
		}
	}
	return false
}

// NonEmptyText accepts any non-blank text input.
func NonEmptyText(errMsg string) ValidateFunc {
	return func(in Input) (string, error) {
		t := strings.TrimSpace(in.Text)
		if t == "" {
			return "", fmt.Errorf("%s", errMsg)
		}
		return t, nil
	}
}

// PositiveInt accepts integers greater than zero.
func PositiveInt(errMsg string) ValidateFunc {
	return func(in Input) (string, error) {
		n, err := strconv.Atoi(strings.TrimSpace(in.Text))
		if err != nil || n <= 0 {
			return "", fmt.Errorf("%s", errMsg)
		}
		return strconv.Itoa(n), nil
	}
}

// NonNegativeInt accepts integers of at least zero.
func NonNegativeInt(errMsg string) ValidateFunc {
	return func(in Input) (string, error) {
		n, err := strconv.Atoi(strings.TrimSpace(in.Text))
		if err != nil || n < 0 {
			return "", fmt.Errorf("%s", errMsg)
		}
		return strconv.Itoa(n), nil
	}
}

// PhotoOrSkip accepts a photo attachment, or the skip label as text, in
// which case the stored value is empty.
func PhotoOrSkip(skipLabel, errMsg string) ValidateFunc {
	return func(in Input) (string, error) {
		if in.PhotoID != "" {
			return in.PhotoID, nil
		}
		if strings.EqualFold(strings.TrimSpace(in.Text), skipLabel) {
			return "", nil
		}
		return "", fmt.Errorf("%s", errMsg)
	}
}

// Choice accepts only one of the enumerated options (case-insensitive)
// and stores the canonical spelling.
func Choice(errMsg string, options ...string) ValidateFunc {
	return func(in Input) (string, error) {
		t := strings.TrimSpace(in.Text)
		for _, opt := range options {
			if strings.EqualFold(t, opt) {
				return opt, nil
			}
		}
		return "", fmt.Errorf("%s", errMsg)
	}
}

// TextOrContact prefers a shared contact over typed text.
func TextOrContact(errMsg string) ValidateFunc {
	return func(in Input) (string, error) {
		if in.Contact != "" {
			return in.Contact, nil
		}
		t := strings.TrimSpace(in.Text)
		if t == "" {
			return "", fmt.Errorf("%s", errMsg)
		}
		return t, nil
	}
}
