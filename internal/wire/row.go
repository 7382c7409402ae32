package wire

import (
	"fmt"
	"net/netip"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/shopspring/decimal"
)

// Row is the contract a caller's row type must satisfy to be used with
// Query/Insert/Watch: an ordered list of column names whose order must
// match the server's expected FORMAT RowBinary column order (spec §3).
//
// Per-field encode/decode is driven by reflection (struct tags), not by
// a method the caller implements — see Schema below. SchemaFor does not
// consult Row: a type's column list always comes from its exported
// fields and their `ch` tags, whether or not the type implements Columns.
type Row interface {
	Columns() []string
}

// fieldCodec is one struct field's wire behavior, resolved once at
// schema build time and then reused for every row (spec §9 design
// notes: "should not require global registration" — registration here
// is local to a Schema, cached per Go type, not global mutable state
// beyond the cache itself).
type fieldCodec struct {
	name   string
	index  []int
	encode func(e *Encoder, v reflect.Value) error
	decode func(d *Decoder, v reflect.Value) error
}

// Schema is the resolved, reusable encode/decode plan for a Go struct
// type used as a row (spec §3 "Row schema descriptor").
type Schema struct {
	typ    reflect.Type
	fields []fieldCodec
	names  []string
}

// Names returns the declared field order — the contract a caller's
// struct ordering must match the server's column order (spec §3
// invariant).
func (s *Schema) Names() []string { return s.names }

var schemaCache sync.Map // reflect.Type -> *Schema

// SchemaFor resolves (and caches) the Schema for T, a struct type.
func SchemaFor(t reflect.Type) (*Schema, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, errors.Errorf("wire: row type %s is not a struct", t)
	}
	if cached, ok := schemaCache.Load(t); ok {
		return cached.(*Schema), nil
	}
	s, err := buildSchema(t)
	if err != nil {
		return nil, err
	}
	actual, _ := schemaCache.LoadOrStore(t, s)
	return actual.(*Schema), nil
}

// tag shape: `ch:"col_name"` for the column name (defaults to the Go
// field name), optionally followed by `,scale=N` / `,precision=N` /
// `,ipv6` hints the codec needs but reflection can't infer.
type tagOpts struct {
	name      string
	scale     int32
	precision DateTime64Precision
	ipv6      bool
	skip      bool
}

func parseTag(f reflect.StructField) tagOpts {
	raw, ok := f.Tag.Lookup("ch")
	opts := tagOpts{name: f.Name}
	if !ok {
		return opts
	}
	parts := strings.Split(raw, ",")
	if parts[0] == "-" {
		opts.skip = true
		return opts
	}
	if parts[0] != "" {
		opts.name = parts[0]
	}
	for _, p := range parts[1:] {
		kv := strings.SplitN(p, "=", 2)
		switch kv[0] {
		case "scale":
			if len(kv) == 2 {
				if n, err := strconv.Atoi(kv[1]); err == nil {
					opts.scale = int32(n)
				}
			}
		case "precision":
			if len(kv) == 2 {
				if n, err := strconv.Atoi(kv[1]); err == nil {
					opts.precision = DateTime64Precision(n)
				}
			}
		case "ipv6":
			opts.ipv6 = true
		}
	}
	return opts
}

func buildSchema(t reflect.Type) (*Schema, error) {
	s := &Schema{typ: t}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		opts := parseTag(f)
		if opts.skip {
			continue
		}
		fc, err := buildFieldCodec(f.Type, opts)
		if err != nil {
			return nil, errors.Wrapf(err, "field %s", f.Name)
		}
		fc.name = opts.name
		fc.index = f.Index
		s.fields = append(s.fields, fc)
		s.names = append(s.names, opts.name)
	}
	return s, nil
}

var (
	uuidType    = reflect.TypeOf(uuid.UUID{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
	timeType    = reflect.TypeOf(time.Time{})
	addrType    = reflect.TypeOf(netip.Addr{})
	pointType   = reflect.TypeOf(orb.Point{})
	ringType    = reflect.TypeOf(orb.Ring{})
	polyType    = reflect.TypeOf(orb.Polygon{})
	mpolyType   = reflect.TypeOf(orb.MultiPolygon{})
)

func buildFieldCodec(t reflect.Type, opts tagOpts) (fieldCodec, error) {
	switch {
	case t.Kind() == reflect.Pointer:
		return buildNullableCodec(t.Elem(), opts)
	case isLowCardinality(t):
		return buildLowCardinalityCodec(t, opts)
	case t == uuidType:
		return fieldCodec{
			encode: func(e *Encoder, v reflect.Value) error { e.UUID(v.Interface().(uuid.UUID)); return nil },
			decode: func(d *Decoder, v reflect.Value) error {
				u, err := d.UUID()
				if err != nil {
					return err
				}
				v.Set(reflect.ValueOf(u))
				return nil
			},
		}, nil
	case t == decimalType:
		scale := opts.scale
		return fieldCodec{
			encode: func(e *Encoder, v reflect.Value) error {
				e.Decimal64(v.Interface().(decimal.Decimal), scale)
				return nil
			},
			decode: func(d *Decoder, v reflect.Value) error {
				dv, err := d.Decimal64(scale)
				if err != nil {
					return err
				}
				v.Set(reflect.ValueOf(dv))
				return nil
			},
		}, nil
	case t == timeType:
		precision := opts.precision
		return fieldCodec{
			encode: func(e *Encoder, v reflect.Value) error {
				e.DateTime64(v.Interface().(time.Time), precision)
				return nil
			},
			decode: func(d *Decoder, v reflect.Value) error {
				tv, err := d.DateTime64(precision)
				if err != nil {
					return err
				}
				v.Set(reflect.ValueOf(tv))
				return nil
			},
		}, nil
	case t == addrType:
		ipv6 := opts.ipv6
		return fieldCodec{
			encode: func(e *Encoder, v reflect.Value) error {
				a := v.Interface().(netip.Addr)
				if ipv6 {
					e.IPv6(a)
				} else {
					e.IPv4(a)
				}
				return nil
			},
			decode: func(d *Decoder, v reflect.Value) error {
				var a netip.Addr
				var err error
				if ipv6 {
					a, err = d.IPv6()
				} else {
					a, err = d.IPv4()
				}
				if err != nil {
					return err
				}
				v.Set(reflect.ValueOf(a))
				return nil
			},
		}, nil
	case t == pointType:
		return fieldCodec{
			encode: func(e *Encoder, v reflect.Value) error { e.Point(v.Interface().(orb.Point)); return nil },
			decode: func(d *Decoder, v reflect.Value) error {
				p, err := d.Point()
				if err != nil {
					return err
				}
				v.Set(reflect.ValueOf(p))
				return nil
			},
		}, nil
	case t == ringType:
		return fieldCodec{
			encode: func(e *Encoder, v reflect.Value) error { e.Ring(v.Interface().(orb.Ring)); return nil },
			decode: func(d *Decoder, v reflect.Value) error {
				r, err := d.Ring()
				if err != nil {
					return err
				}
				v.Set(reflect.ValueOf(r))
				return nil
			},
		}, nil
	case t == polyType:
		return fieldCodec{
			encode: func(e *Encoder, v reflect.Value) error { e.Polygon(v.Interface().(orb.Polygon)); return nil },
			decode: func(d *Decoder, v reflect.Value) error {
				p, err := d.Polygon()
				if err != nil {
					return err
				}
				v.Set(reflect.ValueOf(p))
				return nil
			},
		}, nil
	case t == mpolyType:
		return fieldCodec{
			encode: func(e *Encoder, v reflect.Value) error {
				e.MultiPolygon(v.Interface().(orb.MultiPolygon))
				return nil
			},
			decode: func(d *Decoder, v reflect.Value) error {
				m, err := d.MultiPolygon()
				if err != nil {
					return err
				}
				v.Set(reflect.ValueOf(m))
				return nil
			},
		}, nil
	case t.Kind() == reflect.String:
		return fieldCodec{
			encode: func(e *Encoder, v reflect.Value) error { e.String(v.String()); return nil },
			decode: func(d *Decoder, v reflect.Value) error {
				s, err := d.String()
				if err != nil {
					return err
				}
				v.SetString(s)
				return nil
			},
		}, nil
	case t.Kind() == reflect.Bool:
		return fieldCodec{
			encode: func(e *Encoder, v reflect.Value) error { e.Bool(v.Bool()); return nil },
			decode: func(d *Decoder, v reflect.Value) error {
				b, err := d.Bool()
				if err != nil {
					return err
				}
				v.SetBool(b)
				return nil
			},
		}, nil
	case t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8:
		return fieldCodec{
			encode: func(e *Encoder, v reflect.Value) error { e.String(string(v.Bytes())); return nil },
			decode: func(d *Decoder, v reflect.Value) error {
				s, err := d.String()
				if err != nil {
					return err
				}
				v.SetBytes([]byte(s))
				return nil
			},
		}, nil
	case t.Kind() == reflect.Slice:
		return buildArrayCodec(t.Elem(), opts)
	case isIntKind(t.Kind()), isUintKind(t.Kind()):
		return buildIntCodec(t)
	case t.Kind() == reflect.Float32:
		return fieldCodec{
			encode: func(e *Encoder, v reflect.Value) error { e.Float32(float32(v.Float())); return nil },
			decode: func(d *Decoder, v reflect.Value) error {
				f, err := d.Float32()
				if err != nil {
					return err
				}
				v.SetFloat(float64(f))
				return nil
			},
		}, nil
	case t.Kind() == reflect.Float64:
		return fieldCodec{
			encode: func(e *Encoder, v reflect.Value) error { e.Float64(v.Float()); return nil },
			decode: func(d *Decoder, v reflect.Value) error {
				f, err := d.Float64()
				if err != nil {
					return err
				}
				v.SetFloat(f)
				return nil
			},
		}, nil
	default:
		return fieldCodec{}, errors.Errorf("unsupported field type %s", t)
	}
}

func isIntKind(k reflect.Kind) bool {
	return k == reflect.Int8 || k == reflect.Int16 || k == reflect.Int32 || k == reflect.Int64 || k == reflect.Int
}

func isUintKind(k reflect.Kind) bool {
	return k == reflect.Uint8 || k == reflect.Uint16 || k == reflect.Uint32 || k == reflect.Uint64 || k == reflect.Uint
}

func buildIntCodec(t reflect.Type) (fieldCodec, error) {
	switch t.Kind() {
	case reflect.Int8:
		return fieldCodec{
			encode: func(e *Encoder, v reflect.Value) error { e.Int8(int8(v.Int())); return nil },
			decode: func(d *Decoder, v reflect.Value) error { x, err := d.Int8(); v.SetInt(int64(x)); return err },
		}, nil
	case reflect.Int16:
		return fieldCodec{
			encode: func(e *Encoder, v reflect.Value) error { e.Int16(int16(v.Int())); return nil },
			decode: func(d *Decoder, v reflect.Value) error { x, err := d.Int16(); v.SetInt(int64(x)); return err },
		}, nil
	case reflect.Int32:
		return fieldCodec{
			encode: func(e *Encoder, v reflect.Value) error { e.Int32(int32(v.Int())); return nil },
			decode: func(d *Decoder, v reflect.Value) error { x, err := d.Int32(); v.SetInt(int64(x)); return err },
		}, nil
	case reflect.Int64, reflect.Int:
		return fieldCodec{
			encode: func(e *Encoder, v reflect.Value) error { e.Int64(v.Int()); return nil },
			decode: func(d *Decoder, v reflect.Value) error { x, err := d.Int64(); v.SetInt(x); return err },
		}, nil
	case reflect.Uint8:
		return fieldCodec{
			encode: func(e *Encoder, v reflect.Value) error { e.Uint8(uint8(v.Uint())); return nil },
			decode: func(d *Decoder, v reflect.Value) error { x, err := d.Uint8(); v.SetUint(uint64(x)); return err },
		}, nil
	case reflect.Uint16:
		return fieldCodec{
			encode: func(e *Encoder, v reflect.Value) error { e.Uint16(uint16(v.Uint())); return nil },
			decode: func(d *Decoder, v reflect.Value) error { x, err := d.Uint16(); v.SetUint(uint64(x)); return err },
		}, nil
	case reflect.Uint32:
		return fieldCodec{
			encode: func(e *Encoder, v reflect.Value) error { e.Uint32(uint32(v.Uint())); return nil },
			decode: func(d *Decoder, v reflect.Value) error { x, err := d.Uint32(); v.SetUint(uint64(x)); return err },
		}, nil
	case reflect.Uint64, reflect.Uint:
		return fieldCodec{
			encode: func(e *Encoder, v reflect.Value) error { e.Uint64(v.Uint()); return nil },
			decode: func(d *Decoder, v reflect.Value) error { x, err := d.Uint64(); v.SetUint(x); return err },
		}, nil
	default:
		return fieldCodec{}, errors.Errorf("unsupported integer kind %s", t.Kind())
	}
}

func buildNullableCodec(elem reflect.Type, opts tagOpts) (fieldCodec, error) {
	inner, err := buildFieldCodec(elem, opts)
	if err != nil {
		return fieldCodec{}, err
	}
	return fieldCodec{
		encode: func(e *Encoder, v reflect.Value) error {
			var innerErr error
			EncodeNullable(e, v.IsNil(), func() {
				innerErr = inner.encode(e, v.Elem())
			})
			return innerErr
		},
		decode: func(d *Decoder, v reflect.Value) error {
			isNull, err := DecodeNullable(d, func() error {
				nv := reflect.New(elem)
				if err := inner.decode(d, nv.Elem()); err != nil {
					return err
				}
				v.Set(nv)
				return nil
			})
			if err != nil {
				return err
			}
			if isNull {
				v.SetZero()
			}
			return nil
		},
	}, nil
}

// isLowCardinality reports whether t is an instantiation of the
// LowCardinality[T] marker struct (spec §4.1): one exported field named
// Value, on a generic type whose name carries the "LowCardinality["
// prefix Go assigns instantiated generic types.
func isLowCardinality(t reflect.Type) bool {
	return t.Kind() == reflect.Struct &&
		t.NumField() == 1 &&
		t.Field(0).Name == "Value" &&
		strings.HasPrefix(t.Name(), "LowCardinality[")
}

// buildLowCardinalityCodec wires LowCardinality[T] transparently as T:
// LowCardinality is a server-side storage encoding, invisible on the
// RowBinary wire (spec §4.1), so the codec just forwards to T's own
// field codec against the wrapper's Value field.
func buildLowCardinalityCodec(t reflect.Type, opts tagOpts) (fieldCodec, error) {
	valueField := t.Field(0)
	inner, err := buildFieldCodec(valueField.Type, opts)
	if err != nil {
		return fieldCodec{}, err
	}
	return fieldCodec{
		encode: func(e *Encoder, v reflect.Value) error {
			return inner.encode(e, v.Field(0))
		},
		decode: func(d *Decoder, v reflect.Value) error {
			return inner.decode(d, v.Field(0))
		},
	}, nil
}

func buildArrayCodec(elem reflect.Type, opts tagOpts) (fieldCodec, error) {
	inner, err := buildFieldCodec(elem, opts)
	if err != nil {
		return fieldCodec{}, err
	}
	return fieldCodec{
		encode: func(e *Encoder, v reflect.Value) error {
			var innerErr error
			EncodeArray(e, v.Len(), func(i int) {
				if innerErr != nil {
					return
				}
				innerErr = inner.encode(e, v.Index(i))
			})
			return innerErr
		},
		decode: func(d *Decoder, v reflect.Value) error {
			slice := reflect.MakeSlice(reflect.SliceOf(elem), 0, 0)
			_, err := DecodeArray(d, func(i int) error {
				nv := reflect.New(elem).Elem()
				if err := inner.decode(d, nv); err != nil {
					return err
				}
				slice = reflect.Append(slice, nv)
				return nil
			})
			if err != nil {
				return err
			}
			v.Set(slice)
			return nil
		},
	}, nil
}

// EncodeRow writes row (a struct or pointer to struct matching Schema)
// in declared field order.
func (s *Schema) EncodeRow(e *Encoder, row any) error {
	v := reflect.ValueOf(row)
	for v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	for _, f := range s.fields {
		if err := f.encode(e, v.FieldByIndex(f.index)); err != nil {
			return fmt.Errorf("encode field %s: %w", f.name, err)
		}
	}
	return nil
}

// DecodeRow reads into *row (must be a non-nil pointer to a struct
// matching Schema) in declared field order.
func (s *Schema) DecodeRow(d *Decoder, row any) error {
	v := reflect.ValueOf(row)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return errors.New("wire: DecodeRow requires a non-nil pointer")
	}
	v = v.Elem()
	for _, f := range s.fields {
		if err := f.decode(d, v.FieldByIndex(f.index)); err != nil {
			return fmt.Errorf("decode field %s: %w", f.name, err)
		}
	}
	return nil
}
