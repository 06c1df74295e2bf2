package h264encoder

import "github.com/Eyevinn/mp4ff/avc"

const nalAUD = byte(avc.NALU_AUD)

// IsKeyframe reports whether an Annex B access unit contains an IDR slice.
func IsKeyframe(au []byte) bool {
	for _, nalu := range avc.ExtractNalusFromByteStream(au) {
		if len(nalu) > 0 && avc.GetNaluType(nalu[0]) == avc.NALU_IDR {
			return true
		}
	}
	return false
}

// auSplitter accumulates an Annex B byte stream and cuts it into access units
// at each access unit delimiter.
type auSplitter struct {
	buf     []byte
	scanPos int
}

// Write appends stream bytes and returns every access unit completed by them.
func (s *auSplitter) Write(p []byte) [][]byte {
	s.buf = append(s.buf, p...)

	var units [][]byte
	for {
		from := s.scanPos
		if from < 4 {
			from = 4
		}
		next := nextAUD(s.buf, from)
		if next < 0 {
			if n := len(s.buf) - 3; n > s.scanPos {
				s.scanPos = n
			}
			return units
		}

		au := make([]byte, next)
		copy(au, s.buf[:next])
		units = append(units, au)

		s.buf = append(s.buf[:0], s.buf[next:]...)
		s.scanPos = 0
	}
}

// Flush returns the trailing access unit, if any.
func (s *auSplitter) Flush() []byte {
	if len(s.buf) == 0 {
		return nil
	}
	au := s.buf
	s.buf = nil
	s.scanPos = 0
	return au
}

// nextAUD returns the offset of the start code introducing the next access
// unit delimiter at or after from, or -1.
func nextAUD(b []byte, from int) int {
	for i := from; i+3 < len(b); i++ {
		if b[i] != 0 || b[i+1] != 0 || b[i+2] != 1 {
			continue
		}
		if b[i+3]&0x1F != nalAUD {
			continue
		}
		if b[i-1] == 0 {
			return i - 1
		}
		return i
	}
	return -1
}
