package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"trickplay/internal/domain"
)

// Repository is the mongo-backed library item registry.
type Repository struct {
	collection *mongo.Collection
}

type videoStreamDoc struct {
	Index  int    `bson:"index"`
	Codec  string `bson:"codec"`
	Width  int    `bson:"width"`
	Height int    `bson:"height"`
}

type mediaSourceDoc struct {
	ID          string         `bson:"id"`
	Path        string         `bson:"path"`
	Container   string         `bson:"container"`
	VideoStream videoStreamDoc `bson:"videoStream"`
}

type itemDoc struct {
	ID           string           `bson:"_id"`
	Name         string           `bson:"name"`
	Path         string           `bson:"path"`
	MetadataDir  string           `bson:"metadataDir"`
	MediaSources []mediaSourceDoc `bson:"mediaSources"`
	RuntimeTicks int64            `bson:"runtimeTicks"`
	CreatedAt    int64            `bson:"createdAt"`
	UpdatedAt    int64            `bson:"updatedAt"`
}

func NewRepository(client *mongo.Client, dbName, collectionName string) *Repository {
	return &Repository{collection: client.Database(dbName).Collection(collectionName)}
}

func Connect(ctx context.Context, uri string, extra ...*options.ClientOptions) (*mongo.Client, error) {
	opts := append([]*options.ClientOptions{options.Client().ApplyURI(uri)}, extra...)
	client, err := mongo.Connect(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (r *Repository) EnsureIndexes(ctx context.Context) error {
	if r == nil || r.collection == nil {
		return nil
	}
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: "text"}}},
		{Keys: bson.D{{Key: "path", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "updatedAt", Value: -1}}},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, models)
	return err
}

func (r *Repository) Create(ctx context.Context, item domain.LibraryItem) error {
	_, err := r.collection.InsertOne(ctx, toDoc(item))
	if err != nil && mongo.IsDuplicateKeyError(err) {
		return domain.ErrAlreadyExists
	}
	return err
}

func (r *Repository) Update(ctx context.Context, item domain.LibraryItem) error {
	doc := toDoc(item)
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id domain.ItemID) (domain.LibraryItem, error) {
	var doc itemDoc
	if err := r.collection.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.LibraryItem{}, domain.ErrNotFound
		}
		return domain.LibraryItem{}, err
	}
	return fromDoc(doc), nil
}

func (r *Repository) List(ctx context.Context) ([]domain.LibraryItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []itemDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	items := make([]domain.LibraryItem, 0, len(docs))
	for _, doc := range docs {
		items = append(items, fromDoc(doc))
	}
	return items, nil
}

func (r *Repository) Delete(ctx context.Context, id domain.ItemID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func toDoc(item domain.LibraryItem) itemDoc {
	sources := make([]mediaSourceDoc, 0, len(item.MediaSources))
	for _, src := range item.MediaSources {
		sources = append(sources, mediaSourceDoc{
			ID:        src.ID,
			Path:      src.Path,
			Container: src.Container,
			VideoStream: videoStreamDoc{
				Index:  src.VideoStream.Index,
				Codec:  src.VideoStream.Codec,
				Width:  src.VideoStream.Width,
				Height: src.VideoStream.Height,
			},
		})
	}

	return itemDoc{
		ID:           string(item.ID),
		Name:         item.Name,
		Path:         item.Path,
		MetadataDir:  item.MetadataDir,
		MediaSources: sources,
		RuntimeTicks: item.RuntimeTicks,
		CreatedAt:    item.CreatedAt.UTC().Unix(),
		UpdatedAt:    item.UpdatedAt.UTC().Unix(),
	}
}

func fromDoc(doc itemDoc) domain.LibraryItem {
	sources := make([]domain.MediaSource, 0, len(doc.MediaSources))
	for _, src := range doc.MediaSources {
		sources = append(sources, domain.MediaSource{
			ID:        src.ID,
			Path:      src.Path,
			Container: src.Container,
			VideoStream: domain.VideoStream{
				Index:  src.VideoStream.Index,
				Codec:  src.VideoStream.Codec,
				Width:  src.VideoStream.Width,
				Height: src.VideoStream.Height,
			},
		})
	}

	return domain.LibraryItem{
		ID:           domain.ItemID(doc.ID),
		Name:         doc.Name,
		Path:         doc.Path,
		MetadataDir:  doc.MetadataDir,
		MediaSources: sources,
		RuntimeTicks: doc.RuntimeTicks,
		CreatedAt:    time.Unix(doc.CreatedAt, 0).UTC(),
		UpdatedAt:    time.Unix(doc.UpdatedAt, 0).UTC(),
	}
}
