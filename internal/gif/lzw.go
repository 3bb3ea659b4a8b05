package gif

import "io"

// maxCodeWidth is the format's hard cap on LZW code width; the dictionary is
// reset with a clear code once all 12-bit codes are assigned.
const maxCodeWidth = 12

// lzwCompress encodes palette indices with the container's variable-code-size
// LZW scheme and writes the result as 255-byte length-prefixed sub-blocks.
// The caller writes the minimum code size byte and the 0x00 terminator.
func lzwCompress(w io.Writer, pix []byte, minCodeSize int) error {
	bw := &subBlockWriter{w: w}
	e := &lzwEncoder{
		out:       bw,
		clearCode: 1 << minCodeSize,
		eoiCode:   1<<minCodeSize + 1,
		baseWidth: minCodeSize + 1,
	}
	e.reset()

	if err := e.writeCode(e.clearCode); err != nil {
		return err
	}

	if len(pix) > 0 {
		prefix := int(pix[0])
		for _, p := range pix[1:] {
			k := int(p)
			key := prefix<<8 | k
			if code, ok := e.table[key]; ok {
				prefix = code
				continue
			}

			if err := e.writeCode(prefix); err != nil {
				return err
			}

			e.table[key] = e.nextCode
			e.nextCode++
			// The decoder allocates its mirror entry one code behind, so the
			// width grows only once code 1<<width itself has been assigned.
			if e.nextCode == 1<<e.codeWidth+1 && e.codeWidth < maxCodeWidth {
				e.codeWidth++
			}
			if e.nextCode == 1<<maxCodeWidth {
				// Dictionary full: tell the decoder to start over.
				if err := e.writeCode(e.clearCode); err != nil {
					return err
				}
				e.reset()
			}

			prefix = k
		}

		if err := e.writeCode(prefix); err != nil {
			return err
		}
	}

	if err := e.writeCode(e.eoiCode); err != nil {
		return err
	}
	if err := e.flushBits(); err != nil {
		return err
	}
	return bw.flush()
}

// lzwEncoder packs variable-width codes LSB-first and maintains the
// (prefix, byte) → code dictionary.
type lzwEncoder struct {
	out       *subBlockWriter
	clearCode int
	eoiCode   int
	baseWidth int

	table     map[int]int
	nextCode  int
	codeWidth int

	bitBuf uint32
	nBits  int
}

// reset clears the dictionary and restores the initial code width.
func (e *lzwEncoder) reset() {
	e.table = make(map[int]int)
	e.nextCode = e.eoiCode + 1
	e.codeWidth = e.baseWidth
}

// writeCode emits one code at the current width, least significant bit first.
func (e *lzwEncoder) writeCode(code int) error {
	e.bitBuf |= uint32(code) << e.nBits
	e.nBits += e.codeWidth
	for e.nBits >= 8 {
		if err := e.out.writeByte(byte(e.bitBuf)); err != nil {
			return err
		}
		e.bitBuf >>= 8
		e.nBits -= 8
	}
	return nil
}

// flushBits pads the final partial byte with zero bits.
func (e *lzwEncoder) flushBits() error {
	if e.nBits > 0 {
		if err := e.out.writeByte(byte(e.bitBuf)); err != nil {
			return err
		}
		e.bitBuf, e.nBits = 0, 0
	}
	return nil
}

// subBlockWriter groups bytes into sub-blocks of at most 255 bytes, each
// prefixed with its length.
type subBlockWriter struct {
	w   io.Writer
	buf [255]byte
	n   int
}

func (s *subBlockWriter) writeByte(b byte) error {
	s.buf[s.n] = b
	s.n++
	if s.n == len(s.buf) {
		return s.flush()
	}
	return nil
}

func (s *subBlockWriter) flush() error {
	if s.n == 0 {
		return nil
	}
	if _, err := s.w.Write([]byte{byte(s.n)}); err != nil {
		return err
	}
	if _, err := s.w.Write(s.buf[:s.n]); err != nil {
		return err
	}
	s.n = 0
	return nil
}
