package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/richmondnkrumah/Data-Scraper/internal/model"
)

// mongoCollection is the subset of *mongo.Collection the store uses.
type mongoCollection interface {
	Find(ctx context.Context, filter any, opts ...*options.FindOptions) (*mongo.Cursor, error)
	ReplaceOne(ctx context.Context, filter any, replacement any, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
	DeleteMany(ctx context.Context, filter any, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
	Indexes() mongo.IndexView
}

var _ mongoCollection = (*mongo.Collection)(nil)

type companyDoc struct {
	Key       string               `bson:"_id"`
	Name      string               `bson:"name"`
	Record    *model.CompanyRecord `bson:"record"`
	UpdatedAt time.Time            `bson:"updatedAt"`
}

type comparisonDoc struct {
	ID        string                  `bson:"_id"`
	Result    *model.ComparisonResult `bson:"result"`
	UpdatedAt time.Time               `bson:"updatedAt"`
}

// MongoStore implements Store on MongoDB, one document per record.
type MongoStore struct {
	client      *mongo.Client
	companies   mongoCollection
	comparisons mongoCollection
}

// NewMongo connects to MongoDB and opens the record collections.
func NewMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, eris.Wrap(err, "mongo: connect")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(ctx) //nolint:errcheck
		return nil, eris.Wrap(err, "mongo: ping")
	}
	dbh := client.Database(database)
	return &MongoStore{
		client:      client,
		companies:   dbh.Collection("companies"),
		comparisons: dbh.Collection("comparisons"),
	}, nil
}

func (s *MongoStore) GetCompany(ctx context.Context, key string) (*model.CompanyRecord, error) {
	var doc companyDoc
	found, err := findByID(ctx, s.companies, key, &doc)
	if err != nil {
		return nil, eris.Wrapf(err, "mongo: get company %s", key)
	}
	if !found {
		return nil, nil
	}
	return doc.Record, nil
}

func (s *MongoStore) PutCompany(ctx context.Context, key string, rec *model.CompanyRecord) error {
	if rec == nil {
		return eris.New("store: nil company record")
	}
	doc := companyDoc{Key: key, Name: rec.Name, Record: rec, UpdatedAt: writtenAt(rec.LastUpdated)}
	_, err := s.companies.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	return eris.Wrapf(err, "mongo: put company %s", key)
}

func (s *MongoStore) ListCompanies(ctx context.Context) ([]model.CompanyRecord, error) {
	cur, err := s.companies.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, eris.Wrap(err, "mongo: list companies")
	}
	defer cur.Close(ctx) //nolint:errcheck

	var out []model.CompanyRecord
	for cur.Next(ctx) {
		var doc companyDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, eris.Wrap(err, "mongo: decode company")
		}
		if doc.Record != nil {
			out = append(out, *doc.Record)
		}
	}
	return out, eris.Wrap(cur.Err(), "mongo: iterate companies")
}

func (s *MongoStore) GetComparison(ctx context.Context, id string) (*model.ComparisonResult, error) {
	var doc comparisonDoc
	found, err := findByID(ctx, s.comparisons, id, &doc)
	if err != nil {
		return nil, eris.Wrapf(err, "mongo: get comparison %s", id)
	}
	if !found {
		return nil, nil
	}
	return doc.Result, nil
}

func (s *MongoStore) PutComparison(ctx context.Context, id string, res *model.ComparisonResult) error {
	if res == nil {
		return eris.New("store: nil comparison")
	}
	doc := comparisonDoc{ID: id, Result: res, UpdatedAt: writtenAt(res.LastUpdated)}
	_, err := s.comparisons.ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	return eris.Wrapf(err, "mongo: put comparison %s", id)
}

// findByID decodes the document with the given _id into out.
func findByID(ctx context.Context, coll mongoCollection, id string, out any) (bool, error) {
	cur, err := coll.Find(ctx, bson.M{"_id": id}, options.Find().SetLimit(1))
	if err != nil {
		return false, err
	}
	defer cur.Close(ctx) //nolint:errcheck
	if !cur.Next(ctx) {
		return false, cur.Err()
	}
	return true, cur.Decode(out)
}

func (s *MongoStore) Prune(ctx context.Context, before time.Time) (int, error) {
	total := 0
	filter := bson.M{"updatedAt": bson.M{"$lt": before.UTC()}}
	for name, coll := range map[string]mongoCollection{"companies": s.companies, "comparisons": s.comparisons} {
		res, err := coll.DeleteMany(ctx, filter)
		if err != nil {
			return total, eris.Wrapf(err, "mongo: prune %s", name)
		}
		total += int(res.DeletedCount)
	}
	return total, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return eris.Wrap(s.client.Ping(ctx, readpref.Primary()), "mongo: ping")
}

// Migrate creates the updatedAt and name indexes.
func (s *MongoStore) Migrate(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "updatedAt", Value: 1}}},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	}
	if _, err := s.companies.Indexes().CreateMany(ctx, models); err != nil {
		return eris.Wrap(err, "mongo: create company indexes")
	}
	if _, err := s.comparisons.Indexes().CreateMany(ctx, models[:1]); err != nil {
		return eris.Wrap(err, "mongo: create comparison indexes")
	}
	return nil
}

func (s *MongoStore) Close() error {
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return eris.Wrap(s.client.Disconnect(ctx), "mongo: disconnect")
}
