package wire

import "github.com/paulmach/orb"

// Point is a ClickHouse Point: Tuple(Float64, Float64) (domain stack
// supplement to spec §4.1 — see SPEC_FULL.md §3).
func (e *Encoder) Point(p orb.Point) {
	e.Float64(p[0])
	e.Float64(p[1])
}

func (d *Decoder) Point() (orb.Point, error) {
	x, err := d.Float64()
	if err != nil {
		return orb.Point{}, err
	}
	y, err := d.Float64()
	if err != nil {
		return orb.Point{}, err
	}
	return orb.Point{x, y}, nil
}

// Ring is Array(Point).
func (e *Encoder) Ring(r orb.Ring) {
	EncodeArray(e, len(r), func(i int) { e.Point(r[i]) })
}

func (d *Decoder) Ring() (orb.Ring, error) {
	var r orb.Ring
	_, err := DecodeArray(d, func(i int) error {
		p, err := d.Point()
		if err != nil {
			return err
		}
		r = append(r, p)
		return nil
	})
	return r, err
}

// Polygon is Array(Ring).
func (e *Encoder) Polygon(p orb.Polygon) {
	EncodeArray(e, len(p), func(i int) { e.Ring(p[i]) })
}

func (d *Decoder) Polygon() (orb.Polygon, error) {
	var p orb.Polygon
	_, err := DecodeArray(d, func(i int) error {
		r, err := d.Ring()
		if err != nil {
			return err
		}
		p = append(p, r)
		return nil
	})
	return p, err
}

// MultiPolygon is Array(Polygon).
func (e *Encoder) MultiPolygon(m orb.MultiPolygon) {
	EncodeArray(e, len(m), func(i int) { e.Polygon(m[i]) })
}

func (d *Decoder) MultiPolygon() (orb.MultiPolygon, error) {
	var m orb.MultiPolygon
	_, err := DecodeArray(d, func(i int) error {
		p, err := d.Polygon()
		if err != nil {
			return err
		}
		m = append(m, p)
		return nil
	})
	return m, err
}
