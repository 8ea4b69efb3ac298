package provider

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMapFile(t *testing.T) {
	raw := strings.Join([]string{
		"19980102,twx",
		"20031010,aol",
		"20130101,twx",
	}, "\n")

	file, err := ParseMapFile(strings.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, file.Rows, 3)

	delisted, ok := file.DelistingDate()
	require.True(t, ok)
	assert.Equal(t, time.Date(2013, 1, 1, 0, 0, 0, 0, time.UTC), delisted)

	ticker, ok := file.TickerAt(time.Date(2000, 6, 1, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, "AOL", ticker)

	ticker, ok = file.TickerAt(time.Date(2010, 6, 1, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, "TWX", ticker)

	_, ok = file.TickerAt(time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok, "past the last row the symbol is gone")
}

func TestParseMapFileMalformed(t *testing.T) {
	_, err := ParseMapFile(strings.NewReader("not-a-row"))
	require.Error(t, err)

	_, err = ParseMapFile(strings.NewReader("2020xxxx,abc"))
	require.Error(t, err)
}

func TestParseFactorFile(t *testing.T) {
	raw := strings.Join([]string{
		"20200828,0.25,1",
		"20500101,1,1",
	}, "\n")

	file, err := ParseFactorFile(strings.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, file.Rows, 2)

	before := file.FactorAt(time.Date(2020, 8, 27, 12, 0, 0, 0, time.UTC))
	assert.True(t, before.Equal(decimal.NewFromFloat(0.25)))

	after := file.FactorAt(time.Date(2020, 9, 1, 12, 0, 0, 0, time.UTC))
	assert.True(t, after.Equal(decimal.NewFromInt(1)))
}

func TestFactorAtWithoutRowsIsUnit(t *testing.T) {
	var file *FactorFile
	assert.True(t, file.FactorAt(time.Now()).Equal(decimal.NewFromInt(1)))
}

func TestMapFileWithoutRows(t *testing.T) {
	var file *MapFile
	_, ok := file.DelistingDate()
	assert.False(t, ok)
}
