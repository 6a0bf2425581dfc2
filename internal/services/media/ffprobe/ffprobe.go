package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"trickplay/internal/domain"
)

// Prober shells out to ffprobe to read container and stream metadata from a
// media file. Used at item registration time to fill in the video stream
// descriptor and runtime the trickplay pipeline needs.
type Prober struct {
	binary string
}

func New(binary string) *Prober {
	bin := strings.TrimSpace(binary)
	if bin == "" {
		bin = "ffprobe"
	}
	return &Prober{binary: bin}
}

const maxProbeTimeout = 30 * time.Second

func (p *Prober) Probe(ctx context.Context, filePath string) (domain.MediaInfo, error) {
	path := strings.TrimSpace(filePath)
	if path == "" {
		return domain.MediaInfo{}, errors.New("file path is required")
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, maxProbeTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, p.binary,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		path,
	)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return domain.MediaInfo{}, fmt.Errorf("ffprobe failed: %w", err)
		}
		return domain.MediaInfo{}, fmt.Errorf("ffprobe failed: %w: %s", err, msg)
	}

	info, err := parseProbeOutput(stdout.Bytes())
	if err != nil {
		return domain.MediaInfo{}, fmt.Errorf("ffprobe output parse failed: %w", err)
	}
	return info, nil
}

// probePayload is the subset of ffprobe JSON output we parse.
type probePayload struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	CodecType string `json:"codec_type"`
	CodecName string `json:"codec_name"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

type probeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
}

func parseProbeOutput(data []byte) (domain.MediaInfo, error) {
	var payload probePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return domain.MediaInfo{}, err
	}

	var streams []domain.VideoStream
	index := 0
	for _, stream := range payload.Streams {
		if stream.CodecType != "video" {
			continue
		}
		streams = append(streams, domain.VideoStream{
			Index:  index,
			Codec:  stream.CodecName,
			Width:  stream.Width,
			Height: stream.Height,
		})
		index++
	}

	var duration float64
	if payload.Format.Duration != "" {
		if d, err := strconv.ParseFloat(payload.Format.Duration, 64); err == nil && d > 0 {
			duration = d
		}
	}

	container := payload.Format.FormatName
	if idx := strings.Index(container, ","); idx >= 0 {
		container = container[:idx]
	}

	return domain.MediaInfo{
		Container:    container,
		Duration:     duration,
		VideoStreams: streams,
	}, nil
}
