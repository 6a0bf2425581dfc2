package ffprobe

import (
	"testing"
)

func TestParseProbeOutput(t *testing.T) {
	payload := []byte(`{
		"streams": [
			{"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080},
			{"codec_type": "audio", "codec_name": "aac"},
			{"codec_type": "video", "codec_name": "mjpeg", "width": 320, "height": 180}
		],
		"format": {"format_name": "matroska,webm", "duration": "3600.25"}
	}`)

	info, err := parseProbeOutput(payload)
	if err != nil {
		t.Fatalf("parseProbeOutput: %v", err)
	}

	if info.Container != "matroska" {
		t.Errorf("Container: got %q, want matroska", info.Container)
	}
	if info.Duration != 3600.25 {
		t.Errorf("Duration: got %v", info.Duration)
	}
	if len(info.VideoStreams) != 2 {
		t.Fatalf("VideoStreams: got %d, want 2", len(info.VideoStreams))
	}

	primary, ok := info.PrimaryVideoStream()
	if !ok {
		t.Fatal("expected a primary video stream")
	}
	if primary.Codec != "h264" || primary.Width != 1920 || primary.Height != 1080 || primary.Index != 0 {
		t.Errorf("primary stream: %+v", primary)
	}
	if info.VideoStreams[1].Index != 1 {
		t.Errorf("secondary stream index: got %d", info.VideoStreams[1].Index)
	}
}

func TestParseProbeOutputRuntimeTicks(t *testing.T) {
	info, err := parseProbeOutput([]byte(`{"streams": [], "format": {"duration": "1.5"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if got := info.RuntimeTicks(); got != 15_000_000 {
		t.Errorf("RuntimeTicks: got %d, want 15000000", got)
	}
	if _, ok := info.PrimaryVideoStream(); ok {
		t.Error("expected no video stream")
	}
}

func TestParseProbeOutputInvalid(t *testing.T) {
	if _, err := parseProbeOutput([]byte("nonsense")); err == nil {
		t.Fatal("expected parse error")
	}
}
