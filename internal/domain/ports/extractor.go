package ports

import (
	"context"

	"trickplay/internal/domain"
)

// ExtractRequest asks for one still frame every IntervalMs milliseconds,
// scaled to Width, written into OutputDir as numbered files carrying Prefix.
// Filename ordering preserves the natural time order of the frames.
type ExtractRequest struct {
	InputPath   string
	Container   string
	VideoStream domain.VideoStream
	Source      domain.MediaSource
	IntervalMs  int
	OutputDir   string
	Prefix      string
	Width       int
}

// FrameExtractor is the external encoder capability. It returns the written
// frame paths in natural time order. Implementations must observe ctx
// cancellation and abort the extraction promptly.
type FrameExtractor interface {
	ExtractOnInterval(ctx context.Context, req ExtractRequest) ([]string, error)
}

// MediaProbe inspects a media file and reports its streams and duration.
type MediaProbe interface {
	Probe(ctx context.Context, filePath string) (domain.MediaInfo, error)
}
