package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"todo-backend/internal/tasks"
)

const (
	DefaultMongoDatabase   = "todo"
	DefaultMongoCollection = "todos"
)

type taskDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Text      string             `bson:"text"`
	Category  string             `bson:"category"`
	Priority  string             `bson:"priority"`
	Completed bool               `bson:"completed"`
}

func (d taskDoc) task() tasks.Task {
	return tasks.Task{
		ID:        d.ID.Hex(),
		Text:      d.Text,
		Category:  d.Category,
		Priority:  tasks.Priority(d.Priority),
		Completed: d.Completed,
	}
}

// MongoStore keeps one document per task; ids are ObjectIDs in hex.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func OpenMongo(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	if database == "" {
		database = DefaultMongoDatabase
	}
	if collection == "" {
		collection = DefaultMongoCollection
	}

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(10*time.Second))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	s := &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}
	if err := s.Ping(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	// by-id lookups use _id; category deletes get their own index
	_, err = s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "category", Value: 1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create category index: %w", err)
	}
	return s, nil
}

func (s *MongoStore) Insert(ctx context.Context, nt tasks.NewTask) (tasks.Task, error) {
	doc := taskDoc{
		Text:     nt.Text,
		Category: nt.Category,
		Priority: string(nt.Priority),
	}
	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return tasks.Task{}, fmt.Errorf("insert task: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return tasks.Task{}, fmt.Errorf("insert task: unexpected id type %T", res.InsertedID)
	}
	doc.ID = oid
	return doc.task(), nil
}

func (s *MongoStore) FindAll(ctx context.Context) ([]tasks.Task, error) {
	cur, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}
	var docs []taskDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("read tasks: %w", err)
	}

	result := make([]tasks.Task, 0, len(docs))
	for _, d := range docs {
		result = append(result, d.task())
	}
	return result, nil
}

func (s *MongoStore) UpdateByID(ctx context.Context, id string, p tasks.Patch) (*tasks.Task, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	filter := bson.M{"_id": oid}

	var doc taskDoc
	if !p.Empty() {
		err = s.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": patchSet(p)},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&doc)
	} else {
		err = s.coll.FindOne(ctx, filter).Decode(&doc)
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	t := doc.task()
	return &t, nil
}

func (s *MongoStore) DeleteByID(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func (s *MongoStore) DeleteByCategory(ctx context.Context, category string) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"category": category})
	if err != nil {
		return 0, fmt.Errorf("delete category: %w", err)
	}
	return res.DeletedCount, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil || oid.Hex() != id {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", tasks.ErrInvalidID, id)
	}
	return oid, nil
}

func patchSet(p tasks.Patch) bson.M {
	set := bson.M{}
	if p.Completed != nil {
		set["completed"] = *p.Completed
	}
	return set
}
