package db

import (
	"context"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	UserCollection *mongo.Collection
	GigCollection  *mongo.Collection
	BidCollection  *mongo.Collection
	Client         *mongo.Client
)

// Connect establishes the MongoDB connection and binds the collections.
// Called once from main before the server starts serving.
func Connect(ctx context.Context) error {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return err
	}

	dbName := os.Getenv("MONGODB_DB")
	if dbName == "" {
		dbName = "gigflow"
	}

	Client = client
	UserCollection = client.Database(dbName).Collection("users")
	GigCollection = client.Database(dbName).Collection("gigs")
	BidCollection = client.Database(dbName).Collection("bids")

	log.Printf("Connected to MongoDB at %s, db %s", uri, dbName)
	return nil
}

// EnsureIndexes creates the indexes the invariants lean on. The unique
// (gigid, freelancerid) index is the storage-level backstop for the
// one-bid-per-freelancer-per-gig rule.
func EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := UserCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = GigCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "gigid", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "ownerid", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return err
	}

	_, err = BidCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "bidid", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys:    bson.D{{Key: "gigid", Value: 1}, {Key: "freelancerid", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "gigid", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "freelancerid", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}

// Disconnect closes the client; used on graceful shutdown.
func Disconnect(ctx context.Context) {
	if Client == nil {
		return
	}
	if err := Client.Disconnect(ctx); err != nil {
		log.Printf("MongoDB disconnect error: %v", err)
	}
}
