package mp4mux

import "errors"

var (
	// ErrHeaderNotWritten is returned when packets arrive before WriteHeader.
	ErrHeaderNotWritten = errors.New("mp4mux: header not written")

	// ErrHeaderWritten is returned by a second WriteHeader call.
	ErrHeaderWritten = errors.New("mp4mux: header already written")

	// ErrUnsupportedCodec is returned for streams other than H.264.
	ErrUnsupportedCodec = errors.New("mp4mux: unsupported codec")

	// ErrMissingParameterSets is returned when the first packet carries no SPS/PPS.
	ErrMissingParameterSets = errors.New("mp4mux: first packet lacks SPS/PPS")

	// ErrNonMonotonicDTS is returned when a packet's DTS does not increase.
	ErrNonMonotonicDTS = errors.New("mp4mux: non-monotonic decode timestamp")

	// ErrFinalized is returned for writes after WriteTrailer or Close.
	ErrFinalized = errors.New("mp4mux: container finalized")
)
