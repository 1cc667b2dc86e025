package video

import (
	"context"
	"image"
)

// FrameSource defines the interface for opening a video file for frame
// sampling. This is a port that can be implemented by different decoding
// backends.
type FrameSource interface {
	// Open opens the video at the given path for reading. Returns an error
	// if the source cannot be opened or decoded at all.
	Open(source string) (FrameSeq, error)
}

// FrameSeq provides random access to a video's frames by timestamp
type FrameSeq interface {
	// DurationMs returns the video's total duration in milliseconds
	DurationMs() int64

	// FrameAt decodes and returns the frame nearest to the given timestamp
	FrameAt(ctx context.Context, timestampMs int64) (image.Image, error)

	// Close releases the underlying decoder
	Close() error
}
