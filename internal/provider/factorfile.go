package provider

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"
)

// FactorFileRow holds the cumulative adjustment factors effective up to
// and including Date.
type FactorFileRow struct {
	Date        time.Time
	PriceFactor decimal.Decimal
	SplitFactor decimal.Decimal
}

// FactorFile carries a symbol's price-adjustment history, rows ascending
// by date.
type FactorFile struct {
	Rows []FactorFileRow
}

// ParseFactorFile reads "yyyymmdd,priceFactor,splitFactor" lines.
func ParseFactorFile(r io.Reader) (*FactorFile, error) {
	var file FactorFile
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) < 3 {
			return nil, errors.Errorf("malformed factor file line: %q", line)
		}
		date, err := time.ParseInLocation(mapFileDateLayout, parts[0], time.UTC)
		if err != nil {
			return nil, errors.Wrapf(err, "parse factor file date %q", parts[0])
		}
		price, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, errors.Wrapf(err, "parse price factor %q", parts[1])
		}
		split, err := decimal.NewFromString(strings.TrimSpace(parts[2]))
		if err != nil {
			return nil, errors.Wrapf(err, "parse split factor %q", parts[2])
		}
		file.Rows = append(file.Rows, FactorFileRow{
			Date:        date,
			PriceFactor: price,
			SplitFactor: split,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read factor file")
	}
	return &file, nil
}

// FactorAt returns the combined price adjustment factor at t. Outside any
// row the factor is 1.
func (f *FactorFile) FactorAt(t time.Time) decimal.Decimal {
	one := decimal.NewFromInt(1)
	if f == nil || len(f.Rows) == 0 {
		return one
	}
	for _, row := range f.Rows {
		if !t.After(row.Date.Add(24*time.Hour - time.Nanosecond)) {
			return row.PriceFactor.Mul(row.SplitFactor)
		}
	}
	return one
}
