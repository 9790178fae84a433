package flow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodfit/foodfitbot/core/telegram/state"
)

type promptRecorder struct {
	prompts []string
}

func (r *promptRecorder) Prompt(text string) error {
	r.prompts = append(r.prompts, text)
	return nil
}

func (r *promptRecorder) last() string {
	if len(r.prompts) == 0 {
		return ""
	}
	return r.prompts[len(r.prompts)-1]
}

func twoStepFlow(done *Bag) *Flow {
	return &Flow{
		Name: "test.add",
		Steps: []Step{
			{
				State:    state.State("test.name"),
				Key:      "name",
				Prompt:   "Введите название:",
				Validate: NonEmptyText("нужно название"),
			},
			{
				State:    state.State("test.price"),
				Key:      "price",
				Prompt:   "Введите цену:",
				Validate: PositiveInt("нужна цена"),
			},
		},
		Done: func(_ context.Context, _ Responder, _ int64, bag Bag) error {
			*done = bag
			return nil
		},
	}
}

func newTestRunner(t *testing.T, done *Bag) (*Runner, *promptRecorder) {
	t.Helper()
	r := NewRunner(state.NewMemoryManager())
	require.NoError(t, r.Register(twoStepFlow(done)))
	return r, &promptRecorder{}
}

func TestRunnerHappyPath(t *testing.T) {
	var done Bag
	r, out := newTestRunner(t, &done)
	ctx := context.Background()

	require.NoError(t, r.Start(ctx, out, 1, "test.add"))
	assert.Equal(t, "Введите название:", out.last())
	assert.True(t, r.InProgress(1))

	require.NoError(t, r.Process(ctx, out, 1, Input{Text: "Борщ"}))
	assert.Equal(t, "Введите цену:", out.last())

	require.NoError(t, r.Process(ctx, out, 1, Input{Text: "250"}))
	assert.False(t, r.InProgress(1))
	require.NotNil(t, done)
	assert.Equal(t, "Борщ", done["name"])
	assert.Equal(t, 250, done.Int("price"))
}

func TestRunnerInvalidInputKeepsStep(t *testing.T) {
	var done Bag
	r, out := newTestRunner(t, &done)
	ctx := context.Background()

	require.NoError(t, r.Start(ctx, out, 1, "test.add"))
	require.NoError(t, r.Process(ctx, out, 1, Input{Text: "Борщ"}))

	// Garbage price re-prompts and keeps both the step and the bag.
	require.NoError(t, r.Process(ctx, out, 1, Input{Text: "abc"}))
	assert.Equal(t, "нужна цена", out.last())
	assert.True(t, r.InProgress(1))
	assert.Nil(t, done)

	require.NoError(t, r.Process(ctx, out, 1, Input{Text: "100"}))
	assert.Equal(t, "Борщ", done["name"])
}

func TestRunnerCancel(t *testing.T) {
	var done Bag
	r, out := newTestRunner(t, &done)
	ctx := context.Background()

	require.NoError(t, r.Start(ctx, out, 1, "test.add"))
	require.NoError(t, r.Process(ctx, out, 1, Input{Text: "ОТМЕНА"}))
	assert.False(t, r.InProgress(1))
	assert.Equal(t, "Действие отменено", out.last())
	assert.Nil(t, done)
}

func TestRunnerIdleIsNoop(t *testing.T) {
	var done Bag
	r, out := newTestRunner(t, &done)
	require.NoError(t, r.Process(context.Background(), out, 1, Input{Text: "привет"}))
	assert.Empty(t, out.prompts)
}

func TestRunnerSeed(t *testing.T) {
	var done Bag
	r, out := newTestRunner(t, &done)
	ctx := context.Background()

	require.NoError(t, r.Start(ctx, out, 1, "test.add"))
	r.Seed(1, "dish_id", "7")

	require.NoError(t, r.Process(ctx, out, 1, Input{Text: "Борщ"}))
	require.NoError(t, r.Process(ctx, out, 1, Input{Text: "100"}))
	assert.Equal(t, "7", done["dish_id"])
}

func TestRunnerAfterHookAndSilentStep(t *testing.T) {
	var done Bag
	r := NewRunner(state.NewMemoryManager())
	require.NoError(t, r.Register(&Flow{
		Name: "test.after",
		Steps: []Step{
			{
				State:    state.State("after.first"),
				Key:      "first",
				Prompt:   "Первый шаг:",
				Validate: NonEmptyText("текст"),
				After: func(_ context.Context, out Responder, _ int64, bag Bag) error {
					bag["generated"] = "auto"
					return out.Prompt("сгенерировано, теперь второй шаг")
				},
			},
			{
				// No prompt: the After hook above already asked.
				State:    state.State("after.second"),
				Key:      "second",
				Validate: NonEmptyText("текст"),
			},
		},
		Done: func(_ context.Context, _ Responder, _ int64, bag Bag) error {
			done = bag
			return nil
		},
	}))
	out := &promptRecorder{}
	ctx := context.Background()

	require.NoError(t, r.Start(ctx, out, 1, "test.after"))
	require.NoError(t, r.Process(ctx, out, 1, Input{Text: "раз"}))
	assert.Equal(t, "сгенерировано, теперь второй шаг", out.last())
	promptCount := len(out.prompts)

	require.NoError(t, r.Process(ctx, out, 1, Input{Text: "два"}))
	assert.Equal(t, promptCount, len(out.prompts), "silent final transition must not prompt")
	assert.Equal(t, "auto", done["generated"])
	assert.Equal(t, "два", done["second"])
}

func TestRunnerDuplicateStates(t *testing.T) {
	r := NewRunner(state.NewMemoryManager())
	var done Bag
	require.NoError(t, r.Register(twoStepFlow(&done)))
	err := r.Register(&Flow{
		Name: "test.other",
		Steps: []Step{
			{State: state.State("test.name"), Key: "x", Validate: NonEmptyText("t")},
		},
		Done: func(context.Context, Responder, int64, Bag) error { return nil },
	})
	assert.Error(t, err)
}

func TestValidators(t *testing.T) {
	v := PositiveInt("err")
	val, err := v(Input{Text: " 12 "})
	require.NoError(t, err)
	assert.Equal(t, "12", val)
	_, err = v(Input{Text: "0"})
	assert.Error(t, err)

	v = NonNegativeInt("err")
	val, err = v(Input{Text: "0"})
	require.NoError(t, err)
	assert.Equal(t, "0", val)
	_, err = v(Input{Text: "-1"})
	assert.Error(t, err)

	v = PhotoOrSkip("пропустить", "err")
	val, err = v(Input{PhotoID: "file123"})
	require.NoError(t, err)
	assert.Equal(t, "file123", val)
	val, err = v(Input{Text: "Пропустить"})
	require.NoError(t, err)
	assert.Empty(t, val)
	_, err = v(Input{Text: "что?"})
	assert.Error(t, err)

	v = Choice("err", "да", "нет")
	val, err = v(Input{Text: "ДА"})
	require.NoError(t, err)
	assert.Equal(t, "да", val)
	_, err = v(Input{Text: "может"})
	assert.Error(t, err)

	v = TextOrContact("err")
	val, err = v(Input{Contact: "+79990001122", Text: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "+79990001122", val)
	_, err = v(Input{})
	assert.Error(t, err)
}
