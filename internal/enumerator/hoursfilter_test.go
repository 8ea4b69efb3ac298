package enumerator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/hours"
	"main/internal/model"
)

func TestHoursFilterDropsClosedMarketPoints(t *testing.T) {
	loc := newYork(t)
	exchange := hours.NewFallback(loc)

	inSession := bar(
		time.Date(2020, 6, 1, 10, 0, 0, 0, loc),
		time.Date(2020, 6, 1, 10, 1, 0, 0, loc), 1)
	preMarket := bar(
		time.Date(2020, 6, 1, 7, 0, 0, 0, loc),
		time.Date(2020, 6, 1, 7, 1, 0, 0, loc), 2)

	out := drain(NewHoursFilter(FromSlice([]*model.DataPoint{preMarket, inSession}), exchange, false))
	require.Len(t, out, 1)
	assert.Equal(t, inSession, out[0])
}

func TestHoursFilterExtendedHours(t *testing.T) {
	loc := newYork(t)
	exchange := hours.NewFallback(loc)

	preMarket := bar(
		time.Date(2020, 6, 1, 7, 0, 0, 0, loc),
		time.Date(2020, 6, 1, 7, 1, 0, 0, loc), 2)

	out := drain(NewHoursFilter(FromSlice([]*model.DataPoint{preMarket}), exchange, true))
	require.Len(t, out, 1)
}

func TestHoursFilterAlwaysPassesAuxiliary(t *testing.T) {
	loc := newYork(t)
	exchange := hours.NewFallback(loc)

	midnight := time.Date(2020, 6, 1, 0, 0, 0, 0, loc)
	delisting := &model.DataPoint{StartTime: midnight, EndTime: midnight, Payload: &model.Delisting{}}

	out := drain(NewHoursFilter(FromSlice([]*model.DataPoint{delisting}), exchange, false))
	require.Len(t, out, 1)
	assert.Equal(t, delisting, out[0])
}
