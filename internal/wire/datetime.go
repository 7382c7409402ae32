package wire

import "time"

const secondsPerDay = 24 * 60 * 60

// Date encodes days since the Unix epoch as u16 (spec §4.1).
func (e *Encoder) Date(t time.Time) {
	days := t.UTC().Unix() / secondsPerDay
	e.Uint16(uint16(days))
}

func (d *Decoder) Date() (time.Time, error) {
	days, err := d.Uint16()
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(int64(days)*secondsPerDay, 0).UTC(), nil
}

// Date32 encodes days since the epoch as i32, extending Date's range to
// dates before 1970 (spec §4.1).
func (e *Encoder) Date32(t time.Time) {
	days := t.UTC().Unix() / secondsPerDay
	e.Int32(int32(days))
}

func (d *Decoder) Date32() (time.Time, error) {
	days, err := d.Int32()
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(int64(days)*secondsPerDay, 0).UTC(), nil
}

// DateTime encodes seconds since the epoch as u32 (spec §4.1).
func (e *Encoder) DateTime(t time.Time) {
	e.Uint32(uint32(t.UTC().Unix()))
}

func (d *Decoder) DateTime() (time.Time, error) {
	secs, err := d.Uint32()
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(int64(secs), 0).UTC(), nil
}

// DateTime64Precision is the number of fractional-second decimal digits
// a DateTime64(p) column declares; the wire value is i64 in units of
// 10^-p seconds (spec §4.1).
type DateTime64Precision uint8

var pow10 = [...]int64{
	1, 10, 100, 1000, 10000, 100000, 1000000,
	10000000, 100000000, 1000000000,
}

func (p DateTime64Precision) unitsPerSecond() int64 {
	if int(p) >= len(pow10) {
		return pow10[len(pow10)-1]
	}
	return pow10[p]
}

func (e *Encoder) DateTime64(t time.Time, precision DateTime64Precision) {
	units := precision.unitsPerSecond()
	v := t.UTC().Unix()*units + int64(t.UTC().Nanosecond())*units/1e9
	e.Int64(v)
}

func (d *Decoder) DateTime64(precision DateTime64Precision) (time.Time, error) {
	raw, err := d.Int64()
	if err != nil {
		return time.Time{}, err
	}
	units := precision.unitsPerSecond()
	secs := raw / units
	rem := raw % units
	nsec := rem * (1e9 / units)
	return time.Unix(secs, nsec).UTC(), nil
}
