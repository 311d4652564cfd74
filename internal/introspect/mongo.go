package introspect

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/kadirbelkuyu/schemer/internal/config"
	"github.com/kadirbelkuyu/schemer/internal/schema"
)

// mongoSource treats collections as tables and the top-level fields of one
// sample document as columns, with attributes Field and Type.
type mongoSource struct {
	client *mongo.Client
	db     *mongo.Database
}

func openMongo(ctx context.Context, target config.Target) (Source, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(target.MongoURI()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &mongoSource{client: client, db: client.Database(target.MongoDatabase())}, nil
}

func (s *mongoSource) ListTables(ctx context.Context) ([]string, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

func (s *mongoSource) DescribeTable(ctx context.Context, table string) ([]schema.ColumnDescriptor, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})

	var raw bson.Raw
	err := s.db.Collection(table).FindOne(ctx, bson.D{}, opts).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []schema.ColumnDescriptor{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to sample collection %s: %w", table, err)
	}

	return describeDocument(raw)
}

func (s *mongoSource) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// describeDocument lists the top-level fields of doc in document order.
func describeDocument(doc bson.Raw) ([]schema.ColumnDescriptor, error) {
	elements, err := doc.Elements()
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	columns := make([]schema.ColumnDescriptor, 0, len(elements))
	for _, element := range elements {
		columns = append(columns, schema.ColumnDescriptor{
			"Field": element.Key(),
			"Type":  bsonTypeName(element.Value().Type),
		})
	}
	return columns, nil
}

// bsonTypeName uses the aliases accepted by the $type query operator.
func bsonTypeName(t bsontype.Type) string {
	switch t {
	case bsontype.Double:
		return "double"
	case bsontype.String:
		return "string"
	case bsontype.EmbeddedDocument:
		return "object"
	case bsontype.Array:
		return "array"
	case bsontype.Binary:
		return "binData"
	case bsontype.ObjectID:
		return "objectId"
	case bsontype.Boolean:
		return "bool"
	case bsontype.DateTime:
		return "date"
	case bsontype.Null:
		return "null"
	case bsontype.Regex:
		return "regex"
	case bsontype.Int32:
		return "int"
	case bsontype.Timestamp:
		return "timestamp"
	case bsontype.Int64:
		return "long"
	case bsontype.Decimal128:
		return "decimal"
	default:
		return t.String()
	}
}
