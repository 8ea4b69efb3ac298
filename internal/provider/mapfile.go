package provider

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/yanun0323/errors"
)

// MapFileRow is one ticker-history entry: the symbol traded as Ticker up
// to and including Date.
type MapFileRow struct {
	Date   time.Time
	Ticker string
}

// MapFile describes a symbol's ticker history. The last row's date is the
// delisting date; a symbol alive today carries a far-future sentinel row.
type MapFile struct {
	Rows []MapFileRow
}

const mapFileDateLayout = "20060102"

// ParseMapFile reads "yyyymmdd,ticker" lines.
func ParseMapFile(r io.Reader) (*MapFile, error) {
	var file MapFile
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) < 2 {
			return nil, errors.Errorf("malformed map file line: %q", line)
		}
		date, err := time.ParseInLocation(mapFileDateLayout, parts[0], time.UTC)
		if err != nil {
			return nil, errors.Wrapf(err, "parse map file date %q", parts[0])
		}
		file.Rows = append(file.Rows, MapFileRow{
			Date:   date,
			Ticker: strings.ToUpper(parts[1]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read map file")
	}
	return &file, nil
}

// DelistingDate returns the final trading date. Zero rows means never
// delisted.
func (f *MapFile) DelistingDate() (time.Time, bool) {
	if f == nil || len(f.Rows) == 0 {
		return time.Time{}, false
	}
	return f.Rows[len(f.Rows)-1].Date, true
}

// TickerAt returns the ticker the symbol traded under at date.
func (f *MapFile) TickerAt(date time.Time) (string, bool) {
	if f == nil {
		return "", false
	}
	for _, row := range f.Rows {
		if !date.After(row.Date) {
			return row.Ticker, true
		}
	}
	return "", false
}
