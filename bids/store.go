package bids

import (
	"context"
	"time"

	"gigflow/db"
	"gigflow/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store is what the engine needs from the persistence layer. The three
// mutation methods are conditional: their filter carries the expected
// current status, and a zero matched count is reported as the
// corresponding conflict error instead of silently succeeding.
type Store interface {
	// WithTxn runs fn inside one transaction; fn's writes commit together
	// or not at all. The ctx passed to fn must be used for every call.
	WithTxn(ctx context.Context, fn func(ctx context.Context) error) error

	GetGig(ctx context.Context, gigID string) (*models.Gig, error)
	GetBid(ctx context.Context, bidID string) (*models.Bid, error)
	HasBid(ctx context.Context, gigID, freelancerID string) (bool, error)
	InsertBid(ctx context.Context, bid *models.Bid) error

	AssignGigIfOpen(ctx context.Context, gigID string) error
	MarkBidHiredIfPending(ctx context.Context, bidID string) error
	RejectOtherPendingBids(ctx context.Context, gigID, hiredBidID string) (int64, error)

	BidsByGig(ctx context.Context, gigID string) ([]models.Bid, error)
	BidsByFreelancer(ctx context.Context, freelancerID string) ([]models.Bid, error)
	RejectedBids(ctx context.Context, gigID, excludeBidID string) ([]models.Bid, error)

	UserSummary(ctx context.Context, userID string) (*models.UserSummary, error)
}

// MongoStore implements Store on the gigs/bids/users collections.
type MongoStore struct {
	client *mongo.Client
	gigs   *mongo.Collection
	bids   *mongo.Collection
	users  *mongo.Collection
}

func NewMongoStore() *MongoStore {
	return &MongoStore{
		client: db.Client,
		gigs:   db.GigCollection,
		bids:   db.BidCollection,
		users:  db.UserCollection,
	}
}

func (s *MongoStore) WithTxn(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func (s *MongoStore) GetGig(ctx context.Context, gigID string) (*models.Gig, error) {
	var gig models.Gig
	err := s.gigs.FindOne(ctx, bson.M{"gigid": gigID}).Decode(&gig)
	if err == mongo.ErrNoDocuments {
		return nil, ErrGigNotFound
	}
	if err != nil {
		return nil, err
	}
	return &gig, nil
}

func (s *MongoStore) GetBid(ctx context.Context, bidID string) (*models.Bid, error) {
	var bid models.Bid
	err := s.bids.FindOne(ctx, bson.M{"bidid": bidID}).Decode(&bid)
	if err == mongo.ErrNoDocuments {
		return nil, ErrBidNotFound
	}
	if err != nil {
		return nil, err
	}
	return &bid, nil
}

func (s *MongoStore) HasBid(ctx context.Context, gigID, freelancerID string) (bool, error) {
	count, err := s.bids.CountDocuments(ctx, bson.M{"gigid": gigID, "freelancerid": freelancerID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *MongoStore) InsertBid(ctx context.Context, bid *models.Bid) error {
	_, err := s.bids.InsertOne(ctx, bid)
	if mongo.IsDuplicateKeyError(err) {
		// unique (gigid, freelancerid) index; a concurrent duplicate
		// submission lost the race against the in-transaction check
		return ErrAlreadyBid
	}
	return err
}

// AssignGigIfOpen flips the gig open → assigned. The status guard in the
// filter is the compare-and-swap: whoever matches zero documents lost a
// concurrent hire race.
func (s *MongoStore) AssignGigIfOpen(ctx context.Context, gigID string) error {
	res, err := s.gigs.UpdateOne(ctx,
		bson.M{"gigid": gigID, "status": models.GigStatusOpen},
		bson.M{"$set": bson.M{"status": models.GigStatusAssigned, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrGigAssigned
	}
	return nil
}

func (s *MongoStore) MarkBidHiredIfPending(ctx context.Context, bidID string) error {
	res, err := s.bids.UpdateOne(ctx,
		bson.M{"bidid": bidID, "status": models.BidStatusPending},
		bson.M{"$set": bson.M{"status": models.BidStatusHired}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrBidProcessed
	}
	return nil
}

func (s *MongoStore) RejectOtherPendingBids(ctx context.Context, gigID, hiredBidID string) (int64, error) {
	res, err := s.bids.UpdateMany(ctx,
		bson.M{
			"gigid":  gigID,
			"bidid":  bson.M{"$ne": hiredBidID},
			"status": models.BidStatusPending,
		},
		bson.M{"$set": bson.M{"status": models.BidStatusRejected}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (s *MongoStore) BidsByGig(ctx context.Context, gigID string) ([]models.Bid, error) {
	return s.findBids(ctx, bson.M{"gigid": gigID})
}

func (s *MongoStore) BidsByFreelancer(ctx context.Context, freelancerID string) ([]models.Bid, error) {
	return s.findBids(ctx, bson.M{"freelancerid": freelancerID})
}

func (s *MongoStore) RejectedBids(ctx context.Context, gigID, excludeBidID string) ([]models.Bid, error) {
	return s.findBids(ctx, bson.M{
		"gigid":  gigID,
		"bidid":  bson.M{"$ne": excludeBidID},
		"status": models.BidStatusRejected,
	})
}

func (s *MongoStore) findBids(ctx context.Context, filter bson.M) ([]models.Bid, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.bids.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.Bid
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) UserSummary(ctx context.Context, userID string) (*models.UserSummary, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"userid": userID}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return user.Summary(), nil
}
