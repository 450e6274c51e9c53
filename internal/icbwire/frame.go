package icbwire

import "errors"

// ErrTruncated is returned by Framer.Close when a partial packet was still
// being accumulated - the outer I/O loop treats this the same as any other
// end-of-stream and discards it.
var ErrTruncated = errors.New("icbwire: truncated packet at end of stream")

// Framer accumulates arbitrarily chunked reads into complete ICB packets.
// It never allocates beyond its fixed 256-byte accumulator, matching the
// "static unsigned char cmd[256]" buffer in the original icb_recv().
type Framer struct {
	buf        [256]byte
	collected  int // bytes collected so far, including the length byte
}

// NewFramer returns a ready-to-use Framer.
func NewFramer() *Framer {
	return &Framer{}
}

// Feed appends chunk to the accumulator and returns every packet completed
// by it, in order. It tolerates any chunking of the input, including
// chunk boundaries that fall mid-length-byte or mid-field.
func (f *Framer) Feed(chunk []byte) []Packet {
	var packets []Packet
	for len(chunk) > 0 {
		if f.collected == 0 {
			f.buf[0] = chunk[0]
			f.collected = 1
			chunk = chunk[1:]
			continue
		}
		want := int(f.buf[0]) + 1 // length byte + L body bytes
		need := want - f.collected
		if need <= 0 {
			// defensive: length byte of 0 is impossible per the protocol
			// (1 <= L <= 255), but never let a malformed value wedge the
			// accumulator.
			f.collected = 0
			continue
		}
		n := need
		if n > len(chunk) {
			n = len(chunk)
		}
		copy(f.buf[f.collected:], chunk[:n])
		f.collected += n
		chunk = chunk[n:]

		if f.collected == want {
			packets = append(packets, f.parse())
			f.collected = 0
		}
	}
	return packets
}

// Pending reports whether a partial packet is currently buffered.
func (f *Framer) Pending() bool {
	return f.collected > 0
}

// Close reports ErrTruncated if a partial packet is still buffered.
func (f *Framer) Close() error {
	if f.collected > 0 {
		return ErrTruncated
	}
	return nil
}

func (f *Framer) parse() Packet {
	l := int(f.buf[0])
	body := f.buf[1 : l+1] // type byte + payload
	if len(body) == 0 {
		return Packet{}
	}
	return Packet{
		Type:   body[0],
		Fields: splitFields(body[1:]),
	}
}
