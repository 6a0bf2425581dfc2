package mongo

import (
	"reflect"
	"testing"
	"time"

	"trickplay/internal/domain"
)

func TestToDocFromDocRoundtrip(t *testing.T) {
	now := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	item := domain.LibraryItem{
		ID:          "item-1",
		Name:        "Big Buck Bunny",
		Path:        "/media/bbb/bbb.mkv",
		MetadataDir: "/metadata/item-1",
		MediaSources: []domain.MediaSource{
			{
				ID:        "item-1",
				Path:      "/media/bbb/bbb.mkv",
				Container: "matroska",
				VideoStream: domain.VideoStream{
					Index:  0,
					Codec:  "h264",
					Width:  1920,
					Height: 1080,
				},
			},
		},
		RuntimeTicks: 5_965_200_000_000,
		CreatedAt:    now,
		UpdatedAt:    now.Add(time.Minute),
	}

	got := fromDoc(toDoc(item))

	if !reflect.DeepEqual(got, item) {
		t.Errorf("roundtrip mismatch:\ngot  %+v\nwant %+v", got, item)
	}
}

func TestFromDocEmptySources(t *testing.T) {
	item := fromDoc(itemDoc{ID: "x", Name: "n", Path: "/p"})
	if item.ID != "x" {
		t.Errorf("ID: got %q", item.ID)
	}
	if len(item.MediaSources) != 0 {
		t.Errorf("MediaSources: got %d, want 0", len(item.MediaSources))
	}
}
