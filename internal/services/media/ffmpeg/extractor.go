package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"trickplay/internal/domain/ports"
)

// Extractor invokes ffmpeg to sample one still frame every interval from a
// source video, scaled to a target width, into numbered JPEG files. It is
// the concrete frame-extraction capability behind ports.FrameExtractor.
type Extractor struct {
	binary  string
	threads int
}

// New builds an Extractor around the given ffmpeg binary; empty means
// "ffmpeg" from PATH. threads <= 0 leaves the thread count to ffmpeg.
func New(binary string, threads int) *Extractor {
	bin := strings.TrimSpace(binary)
	if bin == "" {
		bin = "ffmpeg"
	}
	return &Extractor{binary: bin, threads: threads}
}

var _ ports.FrameExtractor = (*Extractor)(nil)

// ExtractOnInterval writes frames named <prefix>00000001.jpg and up into
// req.OutputDir and returns their paths in time order. The command is killed
// when ctx is cancelled; partially written frames stay in the output dir,
// which callers treat as scratch space.
func (e *Extractor) ExtractOnInterval(ctx context.Context, req ports.ExtractRequest) ([]string, error) {
	input := strings.TrimSpace(req.InputPath)
	if input == "" {
		return nil, errors.New("input path is required")
	}
	if req.IntervalMs <= 0 {
		return nil, fmt.Errorf("invalid interval %dms", req.IntervalMs)
	}
	if req.Width <= 0 {
		return nil, fmt.Errorf("invalid width %d", req.Width)
	}
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	args := e.buildArgs(req)
	cmd := exec.CommandContext(ctx, e.binary, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("ffmpeg extraction failed: %w", err)
		}
		return nil, fmt.Errorf("ffmpeg extraction failed: %w: %s", err, tail(msg, 500))
	}
	return listFrames(req.OutputDir, req.Prefix)
}

func (e *Extractor) buildArgs(req ports.ExtractRequest) []string {
	args := []string{"-loglevel", "error"}
	if e.threads > 0 {
		args = append(args, "-threads", strconv.Itoa(e.threads))
	}
	args = append(args, "-i", req.InputPath, "-an", "-sn")
	if req.VideoStream.Index > 0 {
		args = append(args, "-map", fmt.Sprintf("0:v:%d", req.VideoStream.Index))
	}
	args = append(args,
		"-vf", fmt.Sprintf("fps=1000/%d,scale=%d:-1", req.IntervalMs, req.Width),
		"-f", "image2",
		"-q:v", "2",
		filepath.Join(req.OutputDir, req.Prefix+"%08d.jpg"),
	)
	return args
}

// listFrames returns the extracted frame files carrying prefix, sorted by
// name so natural time order is preserved.
func listFrames(dir, prefix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	frames := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) || !strings.EqualFold(filepath.Ext(name), ".jpg") {
			continue
		}
		frames = append(frames, filepath.Join(dir, name))
	}
	// os.ReadDir already sorts by filename.
	return frames, nil
}

func tail(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[len(s)-limit:]
}
