package frame

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/goccy/go-json"
)

// Orient selects the JSON shape a frame is encoded into.
type Orient string

const (
	// OrientIndex keys the output by row index, each row a column → value object.
	OrientIndex Orient = "index"
	// OrientColumns keys the output by column, each column a row index → value object.
	OrientColumns Orient = "columns"
	// OrientRecords emits an array of row objects.
	OrientRecords Orient = "records"
)

// Orients lists the accepted orient values.
var Orients = []Orient{OrientIndex, OrientColumns, OrientRecords}

// ParseOrient parses an orient name. Empty selects OrientIndex.
func ParseOrient(s string) (Orient, error) {
	if s == "" {
		return OrientIndex, nil
	}
	for _, o := range Orients {
		if string(o) == s {
			return o, nil
		}
	}
	return "", fmt.Errorf("unknown orient %q", s)
}

// Marshal encodes the frame in the given orientation.
func Marshal(f *Frame, o Orient) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, f, o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes the frame as JSON. Object keys follow frame column order and
// numeric row order, which a plain map encoding would not preserve.
func Encode(w io.Writer, f *Frame, o Orient) error {
	e := &encoder{w: w}
	switch o {
	case OrientIndex, "":
		e.char('{')
		for i := 0; i < f.NRow(); i++ {
			if i > 0 {
				e.char(',')
			}
			e.key(strconv.Itoa(i))
			e.row(f, i)
		}
		e.char('}')
	case OrientColumns:
		e.char('{')
		for c, name := range f.names {
			if c > 0 {
				e.char(',')
			}
			e.key(name)
			e.char('{')
			for i := 0; i < f.NRow(); i++ {
				if i > 0 {
					e.char(',')
				}
				e.key(strconv.Itoa(i))
				e.value(f.Value(i, name))
			}
			e.char('}')
		}
		e.char('}')
	case OrientRecords:
		e.char('[')
		for i := 0; i < f.NRow(); i++ {
			if i > 0 {
				e.char(',')
			}
			e.row(f, i)
		}
		e.char(']')
	default:
		return fmt.Errorf("unknown orient %q", o)
	}
	return e.err
}

type encoder struct {
	w   io.Writer
	err error
}

func (e *encoder) write(b []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(b)
}

func (e *encoder) char(c byte) { e.write([]byte{c}) }

func (e *encoder) key(k string) {
	b, err := json.Marshal(k)
	if err != nil {
		e.err = err
		return
	}
	e.write(b)
	e.char(':')
}

func (e *encoder) value(v any) {
	if e.err != nil {
		return
	}
	b, err := json.Marshal(Normalize(v))
	if err != nil {
		e.err = fmt.Errorf("encode %T: %w", v, err)
		return
	}
	e.write(b)
}

func (e *encoder) row(f *Frame, i int) {
	e.char('{')
	for c, name := range f.names {
		if c > 0 {
			e.char(',')
		}
		e.key(name)
		e.value(f.Value(i, name))
	}
	e.char('}')
}
