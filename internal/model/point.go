package model

import (
	"time"

	"main/internal/model/enum"
)

// DataPoint is a timestamped record flowing through the feed. StartTime and
// EndTime are expressed in the symbol's data time zone; EndTime is the
// instant at which the point becomes knowable. EndTime >= StartTime.
type DataPoint struct {
	Symbol        Symbol
	StartTime     time.Time
	EndTime       time.Time
	Payload       Payload
	IsFillForward bool
}

// EndTimeUTC returns the knowable instant on the UTC clock.
func (p *DataPoint) EndTimeUTC() time.Time {
	return p.EndTime.UTC()
}

func (p *DataPoint) Kind() enum.DataKind {
	if p == nil || p.Payload == nil {
		return enum.DataKindUnknown
	}
	return p.Payload.Kind()
}

// IsAuxiliary reports whether the point carries a corporate action or
// tradability event.
func (p *DataPoint) IsAuxiliary() bool {
	return p.Kind().IsAuxiliary()
}

// Clone copies the point and its payload. Fill-forward builds synthetic
// points from clones so the original is never mutated.
func (p *DataPoint) Clone() *DataPoint {
	if p == nil {
		return nil
	}
	clone := *p
	if p.Payload != nil {
		clone.Payload = p.Payload.Clone()
	}
	return &clone
}
