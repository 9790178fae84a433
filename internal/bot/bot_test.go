package bot

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/foodfit/foodfitbot/internal/flow"
	"github.com/foodfit/foodfitbot/internal/service"
)

// Context.Bot() returns the tele.API interface, so the rating request
// must accept it rather than the concrete bot type.
var _ func(context.Context, tele.API, int64) = (*Handlers)(nil).solicitRating

func TestToggleFilter(t *testing.T) {
	h := &Handlers{filters: map[int64][]service.Filter{}}

	active := h.toggleFilter(1, service.FilterVegan)
	assert.Equal(t, []service.Filter{service.FilterVegan}, active)

	active = h.toggleFilter(1, service.FilterSpicy)
	assert.Len(t, active, 2)

	// Toggling again removes the filter.
	active = h.toggleFilter(1, service.FilterVegan)
	assert.Equal(t, []service.Filter{service.FilterSpicy}, active)

	active = h.toggleFilter(1, service.FilterReset)
	assert.Nil(t, active)
	assert.Empty(t, h.activeFilters(1))
}

func TestModeSwitch(t *testing.T) {
	h := &Handlers{modes: map[int64]uiMode{}}
	assert.Equal(t, modeCustomer, h.mode(1))

	h.setMode(1, modeAdmin)
	assert.Equal(t, modeAdmin, h.mode(1))

	h.setMode(1, modeCustomer)
	assert.Equal(t, modeCustomer, h.mode(1))
	assert.Empty(t, h.modes)
}

func TestParseFieldValue(t *testing.T) {
	v, complaint := parseFieldValue("price", "250")
	require.Empty(t, complaint)
	assert.Equal(t, 250, v)

	_, complaint = parseFieldValue("price", "-5")
	assert.NotEmpty(t, complaint)

	v, complaint = parseFieldValue("calories", "0")
	require.Empty(t, complaint)
	assert.Equal(t, 0, v)

	_, complaint = parseFieldValue("calories", "abc")
	assert.NotEmpty(t, complaint)

	v, complaint = parseFieldValue("description", "Вкусно.")
	require.Empty(t, complaint)
	assert.Equal(t, sql.NullString{String: "Вкусно.", Valid: true}, v)

	v, complaint = parseFieldValue("name", "Борщ")
	require.Empty(t, complaint)
	assert.Equal(t, "Борщ", v)
}

func TestTimeOfDayValidator(t *testing.T) {
	v := timeOfDay("err")

	got, err := v(flow.Input{Text: "18:30"})
	require.NoError(t, err)
	assert.Equal(t, "18:30", got)

	got, err = v(flow.Input{Text: "9.05"})
	require.NoError(t, err)
	assert.Equal(t, "09:05", got)

	_, err = v(flow.Input{Text: "скоро"})
	assert.Error(t, err)
}

func TestSenderFullName(t *testing.T) {
	assert.Empty(t, senderFullName(nil))
	assert.Equal(t, "Анна", senderFullName(&tele.User{FirstName: "Анна"}))
	assert.Equal(t, "Анна Иванова", senderFullName(&tele.User{FirstName: "Анна", LastName: "Иванова"}))
}
