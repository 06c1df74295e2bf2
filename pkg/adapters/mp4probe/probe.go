// Package mp4probe inspects finished recordings.
package mp4probe

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Eyevinn/mp4ff/mp4"
)

// ErrNoVideoTrack is returned when a file has no video track.
var ErrNoVideoTrack = errors.New("mp4probe: no video track found")

// Codec identifies the sample entry of the video track.
type Codec string

const (
	CodecH264    Codec = "h264"
	CodecHEVC    Codec = "hevc"
	CodecAV1     Codec = "av1"
	CodecUnknown Codec = "unknown"
)

// Info describes the video track of an MP4 file.
type Info struct {
	Codec      Codec
	Width      int
	Height     int
	Timescale  uint32
	Samples    int
	Keyframes  int
	Fragments  int
	Duration   time.Duration
	Fragmented bool
}

// FPS returns the average frame rate, or 0 for an empty track.
func (i Info) FPS() float64 {
	if i.Duration <= 0 || i.Samples == 0 {
		return 0
	}
	return float64(i.Samples) / i.Duration.Seconds()
}

// ProbeFile opens and inspects the MP4 file at path.
func ProbeFile(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return Probe(f)
}

// Probe inspects an MP4 stream.
func Probe(r io.ReadSeeker) (Info, error) {
	file, err := mp4.DecodeFile(r)
	if err != nil {
		return Info{}, fmt.Errorf("decode mp4: %w", err)
	}

	moov := file.Moov
	if file.Init != nil && file.Init.Moov != nil {
		moov = file.Init.Moov
	}
	if moov == nil {
		return Info{}, fmt.Errorf("mp4probe: missing moov box")
	}

	var trak *mp4.TrakBox
	for _, t := range moov.Traks {
		if t.Mdia != nil && t.Mdia.Hdlr != nil && t.Mdia.Hdlr.HandlerType == "vide" {
			trak = t
			break
		}
	}
	if trak == nil {
		return Info{}, ErrNoVideoTrack
	}

	info := Info{
		Codec:      CodecUnknown,
		Width:      int(uint32(trak.Tkhd.Width) >> 16),
		Height:     int(uint32(trak.Tkhd.Height) >> 16),
		Fragmented: file.IsFragmented(),
	}
	if trak.Mdia.Mdhd != nil {
		info.Timescale = trak.Mdia.Mdhd.Timescale
	}
	describeSampleEntry(trak, &info)

	if info.Fragmented {
		if err := countFragmented(file, moov, trak.Tkhd.TrackID, &info); err != nil {
			return Info{}, err
		}
	} else {
		countProgressive(trak, &info)
	}

	return info, nil
}

func describeSampleEntry(trak *mp4.TrakBox, info *Info) {
	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return
	}
	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		switch child.Type() {
		case "avc1", "avc3":
			info.Codec = CodecH264
		case "hvc1", "hev1":
			info.Codec = CodecHEVC
		case "av01":
			info.Codec = CodecAV1
		default:
			continue
		}
		if vse, ok := child.(*mp4.VisualSampleEntryBox); ok {
			info.Width = int(vse.Width)
			info.Height = int(vse.Height)
		}
		return
	}
}

func countFragmented(file *mp4.File, moov *mp4.MoovBox, trackID uint32, info *Info) error {
	var trex *mp4.TrexBox
	if moov.Mvex != nil {
		for _, t := range moov.Mvex.Trexs {
			if t.TrackID == trackID {
				trex = t
				break
			}
		}
	}

	var ticks uint64
	for _, seg := range file.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil {
				continue
			}
			info.Fragments++

			samples, err := frag.GetFullSamples(trex)
			if err != nil {
				return fmt.Errorf("get samples: %w", err)
			}
			for _, s := range samples {
				info.Samples++
				if s.Flags == mp4.SyncSampleFlags {
					info.Keyframes++
				}
				ticks += uint64(s.Dur)
			}
		}
	}
	info.Duration = ticksToDuration(ticks, info.Timescale)
	return nil
}

func countProgressive(trak *mp4.TrakBox, info *Info) {
	if trak.Mdia.Minf == nil {
		return
	}
	stbl := trak.Mdia.Minf.Stbl
	if stbl != nil && stbl.Stsz != nil {
		info.Samples = int(stbl.Stsz.SampleNumber)
	}
	if stbl != nil && stbl.Stss != nil {
		info.Keyframes = len(stbl.Stss.SampleNumber)
	} else {
		info.Keyframes = info.Samples
	}
	if trak.Mdia.Mdhd != nil {
		info.Duration = ticksToDuration(trak.Mdia.Mdhd.Duration, info.Timescale)
	}
}

func ticksToDuration(ticks uint64, timescale uint32) time.Duration {
	if timescale == 0 {
		return 0
	}
	return time.Duration(float64(ticks) / float64(timescale) * float64(time.Second))
}
