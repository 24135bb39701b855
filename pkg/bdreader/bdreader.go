// Package bdreader implements the bounded big-endian cursor that every BDMV
// metadata parser (MPLS, CLPI, index.bdmv, MovieObject.bdmv, IG PES) is built
// on top of.
//
// Grounded on pkg/matroska/ebml.go's EBMLReader from the teacher repo: a
// cursor over a borrowed byte slice with an explicit position, plus a
// bytesReader-style in-memory io.ReadSeeker for sub-ranges. BDMV fields are
// fixed-width big-endian rather than EBML VINTs, so the read primitives
// differ, but the shape — borrow, bound, sub-slice without copying, report
// under-runs precisely — is the same.
package bdreader

import "fmt"

// UnderrunError is returned whenever a read would run past the end of the
// reader's bounds. It carries enough detail for a caller to log a precise
// diagnostic without re-deriving the arithmetic.
type UnderrunError struct {
	Requested int
	Offset    int
	Remaining int
}

func (e *UnderrunError) Error() string {
	return fmt.Sprintf("bdreader: requested %d bytes at offset %d, only %d remaining", e.Requested, e.Offset, e.Remaining)
}

// Reader is a bounded cursor over a byte slice. It never copies the
// underlying buffer; sub-readers borrow from their parent and must not
// outlive it. Reader is not safe for concurrent use, matching the rest of
// this system's single-threaded, synchronous model.
type Reader struct {
	buf   []byte
	start int
	end   int
	pos   int
}

// New wraps buf in its entirety.
func New(buf []byte) *Reader {
	return &Reader{buf: buf, start: 0, end: len(buf), pos: 0}
}

func (r *Reader) remaining() int {
	return r.end - r.pos
}

func (r *Reader) underrun(n int) error {
	return &UnderrunError{Requested: n, Offset: r.pos - r.start, Remaining: r.remaining()}
}

func (r *Reader) require(n int) error {
	if n < 0 || n > r.remaining() {
		return r.underrun(n)
	}
	return nil
}

// Offset returns the current position relative to the reader's own start.
func (r *Reader) Offset() int {
	return r.pos - r.start
}

// Remaining returns the number of unread bytes left in this reader.
func (r *Reader) Remaining() int {
	return r.remaining()
}

// Len returns the total size of this reader's bounded range.
func (r *Reader) Len() int {
	return r.end - r.start
}

// Seek moves the cursor to an offset relative to this reader's start.
func (r *Reader) Seek(offset int) error {
	target := r.start + offset
	if offset < 0 || target > r.end {
		return r.underrun(offset - r.Offset())
	}
	r.pos = target
	return nil
}

// Skip advances the cursor by n bytes without reading them.
func (r *Reader) Skip(n int) error {
	if err := r.require(n); err != nil {
		return err
	}
	r.pos += n
	return nil
}

// ReadU8 reads one unsigned byte.
func (r *Reader) ReadU8() (uint8, error) {
	if err := r.require(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

// ReadU16 reads a big-endian uint16.
func (r *Reader) ReadU16() (uint16, error) {
	if err := r.require(2); err != nil {
		return 0, err
	}
	v := uint16(r.buf[r.pos])<<8 | uint16(r.buf[r.pos+1])
	r.pos += 2
	return v, nil
}

// ReadU32 reads a big-endian uint32.
func (r *Reader) ReadU32() (uint32, error) {
	if err := r.require(4); err != nil {
		return 0, err
	}
	v := uint32(r.buf[r.pos])<<24 | uint32(r.buf[r.pos+1])<<16 | uint32(r.buf[r.pos+2])<<8 | uint32(r.buf[r.pos+3])
	r.pos += 4
	return v, nil
}

// ReadU64 reads a big-endian uint64.
func (r *Reader) ReadU64() (uint64, error) {
	if err := r.require(8); err != nil {
		return 0, err
	}
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(r.buf[r.pos+i])
	}
	r.pos += 8
	return v, nil
}

// ReadBytes reads n raw bytes and returns a slice sharing the parent buffer's
// storage. Callers that need an independent copy must clone it themselves.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if err := r.require(n); err != nil {
		return nil, err
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadASCII reads n bytes and returns them as a string with trailing NUL
// bytes stripped, as used for fixed-width ASCII fields (clip ids, magic
// bytes, version tags).
func (r *Reader) ReadASCII(n int) (string, error) {
	b, err := r.ReadBytes(n)
	if err != nil {
		return "", err
	}
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return string(b[:end]), nil
}

// SubReader returns a non-copying reader over [offset, offset+length) of this
// reader's bounded range, positioned at its own start. Sub-readers borrow
// from their parent and must not outlive it.
func (r *Reader) SubReader(offset, length int) (*Reader, error) {
	if offset < 0 || length < 0 || offset+length > r.Len() {
		return nil, r.underrun(length)
	}
	abs := r.start + offset
	return &Reader{buf: r.buf, start: abs, end: abs + length, pos: abs}, nil
}

// Rest returns a sub-reader over everything from the current position to the
// end of this reader's bounded range.
func (r *Reader) Rest() *Reader {
	return &Reader{buf: r.buf, start: r.pos, end: r.end, pos: r.pos}
}
