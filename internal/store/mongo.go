package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/calvinwijaya/hearts-be/internal/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const usersCollection = "users"

// MongoStore keeps one document per user, history embedded.
type MongoStore struct {
	cli   *mongo.Client
	users *mongo.Collection
}

// NewMongoStore connects and pings the server.
func NewMongoStore(ctx context.Context, conf config.MongoConf) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(conf.URL)
	if conf.MaxPoolSize > 0 {
		clientOptions.SetMaxPoolSize(uint64(conf.MaxPoolSize))
	}
	if conf.Username != "" && conf.Password != "" {
		clientOptions.SetAuth(options.Credential{
			Username: conf.Username,
			Password: conf.Password,
		})
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	return &MongoStore{
		cli:   client,
		users: client.Database(conf.DB).Collection(usersCollection),
	}, nil
}

func (s *MongoStore) GetOrCreate(ctx context.Context, id Identity) (*User, error) {
	update := bson.M{
		"$set": bson.M{
			"username":     id.Username,
			"display_name": id.DisplayName,
		},
		"$setOnInsert": bson.M{
			"balance":    int64(0),
			"created_at": time.Now().UTC(),
			"history":    bson.A{},
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var u User
	err := s.users.FindOneAndUpdate(ctx, bson.M{"_id": id.ID}, update, opts).Decode(&u)
	if err != nil {
		return nil, fmt.Errorf("mongodb upsert user %d: %w", id.ID, err)
	}
	return &u, nil
}

func (s *MongoStore) Get(ctx context.Context, id int64) (*User, error) {
	var u User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mongodb find user %d: %w", id, err)
	}
	return &u, nil
}

func (s *MongoStore) AppendResult(ctx context.Context, id int64, res GameResult) error {
	res.EndedAt = res.EndedAt.UTC()
	update := bson.M{
		"$push": bson.M{"history": res},
		"$inc":  bson.M{"balance": res.BalanceChanged},
	}

	result, err := s.users.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("mongodb append result for user %d: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.cli.Disconnect(ctx)
}
