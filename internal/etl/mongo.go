package etl

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/BartekS5/tmmigrate/pkg/logger"
	"github.com/BartekS5/tmmigrate/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoExtractor reads legacy collections from the migration database.
type MongoExtractor struct {
	DB *mongo.Database
}

func NewMongoExtractor(db *mongo.Database) *MongoExtractor {
	return &MongoExtractor{DB: db}
}

func (m *MongoExtractor) Extract(ctx context.Context, collection string) ([]map[string]interface{}, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := m.DB.Collection(collection).Find(ctx, bson.D{}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var raw []bson.M
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}

	results := make([]map[string]interface{}, 0, len(raw))
	for _, doc := range raw {
		results = append(results, map[string]interface{}(doc))
	}
	return results, nil
}

// MongoLoader writes unified documents into the migration database.
type MongoLoader struct {
	DB *mongo.Database
}

func NewMongoLoader(db *mongo.Database) *MongoLoader {
	return &MongoLoader{DB: db}
}

func (m *MongoLoader) Insert(ctx context.Context, collection string, docs []interface{}) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	res, err := m.DB.Collection(collection).InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err != nil {
		inserted := 0
		if res != nil {
			inserted = len(res.InsertedIDs)
		}
		return inserted, fmt.Errorf("insert into %s: %w", collection, err)
	}
	return len(res.InsertedIDs), nil
}

// EnsureCollection uses an explicit create; an existing collection is fine.
func (m *MongoLoader) EnsureCollection(ctx context.Context, collection string) error {
	err := m.DB.CreateCollection(ctx, collection)
	if err == nil || isNamespaceExists(err) {
		return nil
	}
	return fmt.Errorf("create collection %s: %w", collection, err)
}

// EnsureIndexes creates the lookup indexes of every unified collection.
// Creating an index that already exists is a no-op on the server.
func (m *MongoLoader) EnsureIndexes(ctx context.Context) []error {
	var errs []error
	for _, mapping := range models.Mappings {
		coll := m.DB.Collection(mapping.TargetCollection)
		for _, keys := range mapping.Indexes {
			model := mongo.IndexModel{Keys: keys}
			name, err := coll.Indexes().CreateOne(ctx, model)
			if err != nil {
				if isOptionsConflictErr(err) {
					logger.L().Info("reusing existing index",
						zap.String("collection", coll.Name()),
						zap.String("keys", keySig(keys)))
					continue
				}
				errs = append(errs, fmt.Errorf("%s(%s): %w", coll.Name(), keySig(keys), err))
				continue
			}
			logger.L().Info("index ready",
				zap.String("collection", coll.Name()),
				zap.String("name", name))
		}
	}
	return errs
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func isNamespaceExists(err error) bool {
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || ce.Name == "NamespaceExists") {
		return true
	}
	return strings.Contains(err.Error(), "already exists")
}

// Mongo-compatible stores sometimes report IndexOptionsConflict when the same
// keys are indexed under a different name.
func isOptionsConflictErr(err error) bool {
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 85 || ce.Code == 86) {
		return true
	}
	return strings.Contains(err.Error(), "IndexOptionsConflict")
}
