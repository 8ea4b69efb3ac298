package timing

import "time"

// OffsetProvider converts between UTC and a subscription's data time zone.
// Held by each subscription so conversions do not re-resolve the location.
type OffsetProvider struct {
	loc *time.Location
}

func NewOffsetProvider(loc *time.Location) *OffsetProvider {
	if loc == nil {
		loc = time.UTC
	}
	return &OffsetProvider{loc: loc}
}

func (o *OffsetProvider) Location() *time.Location { return o.loc }

// ToLocal expresses a UTC instant in the data time zone.
func (o *OffsetProvider) ToLocal(t time.Time) time.Time { return t.In(o.loc) }

// ToUTC expresses a local instant on the UTC clock.
func (o *OffsetProvider) ToUTC(t time.Time) time.Time { return t.UTC() }
