package wire

// Enum8 and Enum16 are written and read as their underlying integer
// representation: the server, not the client, owns the name<->value
// mapping (spec §4.1). Callers map names to values via their Row
// schema's own lookup table before calling these.

func (e *Encoder) Enum8(v int8)   { e.Int8(v) }
func (e *Encoder) Enum16(v int16) { e.Int16(v) }

func (d *Decoder) Enum8() (int8, error)   { return d.Int8() }
func (d *Decoder) Enum16() (int16, error) { return d.Int16() }
