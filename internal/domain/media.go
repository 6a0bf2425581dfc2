package domain

// TicksPerMs converts between .NET-style ticks (100ns units, the unit the
// library reports runtimes in) and milliseconds.
const TicksPerMs int64 = 10_000

// MediaInfo is the probe result for one media file.
type MediaInfo struct {
	Container    string        `json:"container"`
	Duration     float64       `json:"duration"` // seconds
	VideoStreams []VideoStream `json:"videoStreams"`
}

// RuntimeTicks is the probed duration expressed in ticks.
func (m MediaInfo) RuntimeTicks() int64 {
	return int64(m.Duration * 1000 * float64(TicksPerMs))
}

// PrimaryVideoStream returns the first video stream, or false when the file
// has none.
func (m MediaInfo) PrimaryVideoStream() (VideoStream, bool) {
	if len(m.VideoStreams) == 0 {
		return VideoStream{}, false
	}
	return m.VideoStreams[0], true
}
