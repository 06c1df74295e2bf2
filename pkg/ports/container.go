package ports

// StreamInfo describes the single video stream written into a container.
type StreamInfo struct {
	Codec    CodecID
	Width    int
	Height   int
	FPS      int
	TimeBase Rational // time base of the packets handed to WritePacket
}

// Container abstracts an output file format that interleaves encoded packets.
type Container interface {
	// WriteHeader configures the stream and writes the file header.
	WriteHeader(stream StreamInfo) error

	// TimeBase returns the stream time base chosen by the container.
	// Only valid after WriteHeader.
	TimeBase() Rational

	// WritePacket writes one packet whose timestamps are in TimeBase units.
	WritePacket(pkt Packet) error

	// WriteTrailer writes the closing metadata. Without it the file is not playable.
	WriteTrailer() error

	// Close releases the underlying file handle.
	Close() error
}

// ContainerOpener creates a container writing to path, truncating any existing file.
type ContainerOpener func(path string) (Container, error)
