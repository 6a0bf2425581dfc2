package usecase

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"trickplay/internal/domain"
	"trickplay/internal/domain/ports"
)

var ErrInvalidPath = errors.New("invalid media path")

// RegisterItem probes a media file and stores it as a library item. The
// probe fills in the container, the primary video stream and the runtime, so
// tile generation never has to inspect the file again.
type RegisterItem struct {
	Repo         ports.ItemRepository
	Probe        ports.MediaProbe
	Logger       *slog.Logger
	MetadataRoot string
	Now          func() time.Time
}

type RegisterItemInput struct {
	Name string
	Path string
}

func (uc RegisterItem) Execute(ctx context.Context, input RegisterItemInput) (domain.LibraryItem, error) {
	path := strings.TrimSpace(input.Path)
	if path == "" || !filepath.IsAbs(path) {
		return domain.LibraryItem{}, ErrInvalidPath
	}

	now := time.Now
	if uc.Now != nil {
		now = uc.Now
	}

	info, err := uc.Probe.Probe(ctx, path)
	if err != nil {
		return domain.LibraryItem{}, wrapProbe(err)
	}
	stream, ok := info.PrimaryVideoStream()
	if !ok {
		return domain.LibraryItem{}, ErrNoVideo
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	id := uuid.NewString()
	item := domain.LibraryItem{
		ID:          domain.ItemID(id),
		Name:        name,
		Path:        path,
		MetadataDir: filepath.Join(uc.MetadataRoot, id),
		MediaSources: []domain.MediaSource{{
			ID:          id,
			Path:        path,
			Container:   info.Container,
			VideoStream: stream,
		}},
		RuntimeTicks: info.RuntimeTicks(),
		CreatedAt:    now().UTC(),
		UpdatedAt:    now().UTC(),
	}

	if err := uc.Repo.Create(ctx, item); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return domain.LibraryItem{}, err
		}
		return domain.LibraryItem{}, wrapRepo(err)
	}

	if uc.Logger != nil {
		uc.Logger.Info("item registered",
			slog.String("id", id),
			slog.String("path", path),
			slog.String("codec", stream.Codec))
	}
	return item, nil
}
