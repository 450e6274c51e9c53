// Package icbwire implements the ICB wire protocol: a length-prefixed
// binary framer/parser (component C of the gateway) and the matching
// packet emitter (component H). A packet is one length byte L (1..255),
// one type byte, and L-1 payload bytes split on \x01 into fields.
package icbwire

import "bytes"

// MaxFields is the largest number of \x01-delimited fields a single packet
// payload can carry (one length byte caps the payload at 254 bytes of
// field content once the type byte is subtracted, but a field list can
// contain up to 255 empty fields in degenerate input).
const MaxFields = 255

// MaxFieldLen is the longest a single field may be once the type byte is
// subtracted from the 255-byte ceiling on the length byte's value.
const MaxFieldLen = 254

// Packet is one parsed ICB frame: a type byte and its \x01-delimited
// fields. Fields beyond what the sender provided read as empty.
type Packet struct {
	Type   byte
	Fields [][]byte
}

// Field returns fields[i] or an empty slice if the packet did not carry
// that many fields - every handler in the translator indexes optimistically
// the way icb_cmd() in the original C does, relying on args[] being
// zero-filled past the sender's field count.
func (p Packet) Field(i int) []byte {
	if i < 0 || i >= len(p.Fields) {
		return nil
	}
	return p.Fields[i]
}

// FieldString is Field as a string, for the common case of formatting it
// straight into an IRC line.
func (p Packet) FieldString(i int) string {
	return string(p.Field(i))
}

// splitFields splits payload (the bytes after the type byte) into at most
// MaxFields fields on \x01, replacing \r and \n within each field with '?'
// so that no ICB-origin text can inject a line break into the IRC stream
// it is about to be reformatted into. A NUL terminates only the last
// field on the wire - it is a C-string terminator, not content - so it is
// stripped rather than carried into the final field's value.
func splitFields(payload []byte) [][]byte {
	if i := bytes.IndexByte(payload, 0); i >= 0 {
		payload = payload[:i]
	}

	var fields [][]byte
	cur := make([]byte, 0, 32)
	flush := func() {
		fields = append(fields, sanitizeField(cur))
		cur = make([]byte, 0, 32)
	}
	for _, b := range payload {
		if len(fields) >= MaxFields-1 {
			// the last field absorbs the remainder verbatim, bar sanitisation
			cur = append(cur, b)
			continue
		}
		if b == 0x01 {
			flush()
			continue
		}
		cur = append(cur, b)
	}
	flush()
	return fields
}

func sanitizeField(b []byte) []byte {
	if !bytes.ContainsAny(b, "\r\n") {
		if len(b) > MaxFieldLen {
			return b[:MaxFieldLen]
		}
		return b
	}
	out := make([]byte, len(b))
	for i, c := range b {
		if c == '\r' || c == '\n' {
			out[i] = '?'
		} else {
			out[i] = c
		}
	}
	if len(out) > MaxFieldLen {
		out = out[:MaxFieldLen]
	}
	return out
}
