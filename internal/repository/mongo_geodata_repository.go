package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"GeoData-App/internal/database"
	"GeoData-App/internal/domain/model"
	"GeoData-App/internal/domain/repository"
)

const mongoOpTimeout = 10 * time.Second

type MongoGeoDataRepository struct {
	collection *mongo.Collection
}

func NewMongoGeoDataRepository(client *database.MongoClient) repository.GeoDataRepository {
	return &MongoGeoDataRepository{
		collection: client.GetCollection("geodata"),
	}
}

// geoDataDoc GeoDataのMongoDB保存用の形式
type geoDataDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	LocationName   string             `bson:"locationName,omitempty"`
	Latitude       float64            `bson:"latitude"`
	Longitude      float64            `bson:"longitude"`
	Date           string             `bson:"date"`
	URL            string             `bson:"url"`
	Type           string             `bson:"type,omitempty"`
	ServiceVersion string             `bson:"service_version,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt"`
}

func (d *geoDataDoc) toModel() model.GeoData {
	return model.GeoData{
		ID:             d.ID.Hex(),
		LocationName:   d.LocationName,
		Latitude:       d.Latitude,
		Longitude:      d.Longitude,
		Date:           d.Date,
		URL:            d.URL,
		Type:           d.Type,
		ServiceVersion: d.ServiceVersion,
		CreatedAt:      d.CreatedAt,
	}
}

func (r *MongoGeoDataRepository) Create(ctx context.Context, data *model.GeoData) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	createdAt := data.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	doc := geoDataDoc{
		LocationName:   data.LocationName,
		Latitude:       data.Latitude,
		Longitude:      data.Longitude,
		Date:           data.Date,
		URL:            data.URL,
		Type:           data.Type,
		ServiceVersion: data.ServiceVersion,
		CreatedAt:      createdAt,
	}

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("エントリの保存失敗: %w", err)
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("採番されたIDの形式が不正です: %v", result.InsertedID)
	}
	return oid.Hex(), nil
}

func (r *MongoGeoDataRepository) GetByID(ctx context.Context, id string) (*model.GeoData, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, model.ErrGeoDataNotFound
	}

	var doc geoDataDoc
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrGeoDataNotFound
		}
		return nil, fmt.Errorf("エントリの取得失敗: %w", err)
	}

	data := doc.toModel()
	return &data, nil
}

func (r *MongoGeoDataRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.ErrGeoDataNotFound
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("エントリの削除失敗: %w", err)
	}
	if result.DeletedCount == 0 {
		return model.ErrGeoDataNotFound
	}
	return nil
}

func (r *MongoGeoDataRepository) List(ctx context.Context, query *model.ListQuery) ([]model.GeoData, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	filter := buildListFilter(query)

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("件数の取得失敗: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, buildFindOptions(query))
	if err != nil {
		return nil, 0, fmt.Errorf("エントリの検索失敗: %w", err)
	}

	var docs []geoDataDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("検索結果の読み取り失敗: %w", err)
	}

	results := make([]model.GeoData, 0, len(docs))
	for i := range docs {
		results = append(results, docs[i].toModel())
	}
	return results, total, nil
}

// buildListFilter 検索プランからMongoDBのフィルタドキュメントを構築する
func buildListFilter(q *model.ListQuery) bson.M {
	filter := bson.M{}

	if q.DateAfter != "" || q.DateBefore != "" {
		cond := bson.M{}
		if q.DateAfter != "" {
			cond["$gt"] = q.DateAfter
		}
		if q.DateBefore != "" {
			cond["$lt"] = q.DateBefore
		}
		filter["date"] = cond
	}

	if q.LatMin != nil || q.LatMax != nil {
		cond := bson.M{}
		if q.LatMin != nil {
			cond["$gte"] = *q.LatMin
		}
		if q.LatMax != nil {
			cond["$lte"] = *q.LatMax
		}
		filter["latitude"] = cond
	}

	if q.LonMin != nil || q.LonMax != nil {
		cond := bson.M{}
		if q.LonMin != nil {
			cond["$gte"] = *q.LonMin
		}
		if q.LonMax != nil {
			cond["$lte"] = *q.LonMax
		}
		filter["longitude"] = cond
	}

	if q.LocationName != "" {
		// 特殊文字をエスケープしてリテラルな部分一致にする
		filter["locationName"] = bson.M{
			"$regex": primitive.Regex{Pattern: regexp.QuoteMeta(q.LocationName), Options: "i"},
		}
	}

	return filter
}

// buildFindOptions 検索プランからプロジェクション・ソート・ページングの
// 検索オプションを構築する
func buildFindOptions(q *model.ListQuery) *options.FindOptions {
	opts := options.Find().
		SetSkip(int64(q.Offset())).
		SetLimit(int64(q.Limit))

	if q.HasProjection() {
		projection := bson.M{}
		for _, f := range q.Fields {
			projection[mongoFieldName(f)] = 1
		}
		opts.SetProjection(projection)
	}

	if len(q.Sort) > 0 {
		sort := bson.D{}
		for _, key := range q.Sort {
			order := 1
			if key.Desc {
				order = -1
			}
			sort = append(sort, bson.E{Key: mongoFieldName(key.Field), Value: order})
		}
		opts.SetSort(sort)
	}

	return opts
}

func mongoFieldName(field string) string {
	if field == "id" {
		return "_id"
	}
	return field
}
