package lib

import (
	"fmt"
	"strconv"
)

// Encodes a typed value into its arena bytes. Ints are 16-bit two's
// complement, big endian. Chars are their code. Pointers are the target
// address with 0 for NULL.
func encode(tv TypedValue) ([]byte, error) {
	switch {
	case tv.Type == TypeInt:
		u := uint16(int16(tv.Value))
		return []byte{byte(u >> 8), byte(u)}, nil
	case tv.Type == TypeChar:
		if tv.Value < 0 || tv.Value > 0xff {
			return nil, fmt.Errorf("char code %d does not fit in a byte", tv.Value)
		}
		return []byte{byte(tv.Value)}, nil
	case tv.Type.IsPointer():
		if tv.Value < 0 || tv.Value > maxCapacity {
			return nil, fmt.Errorf("address %d does not fit in a byte", tv.Value)
		}
		return []byte{byte(tv.Value)}, nil
	default:
		return nil, fmt.Errorf("cannot encode a value of type %s", tv.Type)
	}
}

func decode(t Type, b []byte) TypedValue {
	switch {
	case t == TypeInt:
		u := uint16(b[0])<<8 | uint16(b[1])
		return TypedValue{Type: t, Value: int(int16(u))}
	default:
		return TypedValue{Type: t, Value: int(b[0])}
	}
}

// Bits renders each byte as an 8 character bit string.
func Bits(b []byte) []string {
	bits := make([]string, len(b))
	for i, v := range b {
		bits[i] = fmt.Sprintf("%08b", v)
	}
	return bits
}

// FormatValue is the human readable form of a typed value: ints in decimal,
// chars quoted, pointers as 0x-prefixed addresses or NULL.
func FormatValue(tv TypedValue) string {
	switch {
	case tv.Type == TypeInt:
		return strconv.Itoa(tv.Value)
	case tv.Type == TypeChar:
		return strconv.Quote(string(rune(tv.Value)))
	case tv.IsNull():
		return "NULL"
	case tv.Type.IsPointer():
		return fmt.Sprintf("0x%02x", tv.Value)
	default:
		return fmt.Sprintf("%v", tv.Value)
	}
}
