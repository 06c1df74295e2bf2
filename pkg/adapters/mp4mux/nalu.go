package mp4mux

import (
	"encoding/binary"

	"github.com/Eyevinn/mp4ff/avc"
)

// parameterSets returns the first SPS and PPS of an Annex B access unit.
func parameterSets(au []byte) (sps, pps []byte) {
	for _, nalu := range avc.ExtractNalusFromByteStream(au) {
		if len(nalu) == 0 {
			continue
		}
		switch avc.GetNaluType(nalu[0]) {
		case avc.NALU_SPS:
			if sps == nil {
				sps = append([]byte(nil), nalu...)
			}
		case avc.NALU_PPS:
			if pps == nil {
				pps = append([]byte(nil), nalu...)
			}
		}
	}
	return sps, pps
}

// toSample converts an Annex B access unit to a length-prefixed sample.
// Delimiters and parameter sets are dropped; the latter live in avcC.
func toSample(au []byte) []byte {
	nalus := avc.ExtractNalusFromByteStream(au)

	size := 0
	for _, nalu := range nalus {
		size += 4 + len(nalu)
	}

	out := make([]byte, 0, size)
	for _, nalu := range nalus {
		if len(nalu) == 0 {
			continue
		}
		switch avc.GetNaluType(nalu[0]) {
		case avc.NALU_AUD, avc.NALU_SPS, avc.NALU_PPS:
			continue
		}
		out = binary.BigEndian.AppendUint32(out, uint32(len(nalu)))
		out = append(out, nalu...)
	}
	return out
}
