package sinks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	mongoOptions "go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.mongodb.org/mongo-driver/v2/x/mongo/driver/connstring"

	"github.com/lariat-data/lariat-go/core/domain"
	"github.com/lariat-data/lariat-go/core/infrastructure/logging"
)

// MongoDBSink inserts one document per row into a collection
type MongoDBSink struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoDBSink connects to MongoDB. When database is empty the database
// named in the connection string is used.
func NewMongoDBSink(ctx context.Context, connectionString, database, collection string) (*MongoDBSink, error) {
	log := logging.New("sinks:mongodb")
	log.Debugf("Opening MongoDB connection")

	if database == "" {
		cs, err := connstring.ParseAndValidate(connectionString)
		if err != nil {
			return nil, fmt.Errorf("failed to parse mongodb connection string: %w", err)
		}
		database = strings.TrimSpace(cs.Database)
	}
	if database == "" {
		return nil, fmt.Errorf("mongodb sink needs a database option or a database in the connection string")
	}

	client, err := mongo.Connect(mongoOptions.Client().ApplyURI(connectionString))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(pingCtx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	log.Debugf("MongoDB connection opened successfully")
	return &MongoDBSink{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

// Write inserts the rows as documents
func (m *MongoDBSink) Write(ctx context.Context, table *domain.Table) error {
	docs := tableDocuments(table)
	if len(docs) == 0 {
		return nil
	}
	if _, err := m.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert documents: %w", err)
	}
	return nil
}

// Close disconnects the client
func (m *MongoDBSink) Close() error {
	if m.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// tableDocuments converts rows into ordered documents, dropping nil cells
func tableDocuments(table *domain.Table) []any {
	docs := make([]any, 0, len(table.Rows))
	for _, row := range table.Rows {
		doc := make(bson.D, 0, len(table.Columns))
		for i, col := range table.Columns {
			if row[i] == nil {
				continue
			}
			doc = append(doc, bson.E{Key: col, Value: row[i]})
		}
		docs = append(docs, doc)
	}
	return docs
}
