package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/mindgrid/pkg/board"
	"github.com/matzehuels/mindgrid/pkg/errors"
)

// MongoStore is a MongoDB-backed Store for server deployments. Maps, nodes,
// and connections live in three collections; nodes and connections carry a
// map_id field and are loaded in creation order.
type MongoStore struct {
	client *mongo.Client
	maps   *mongo.Collection
	nodes  *mongo.Collection
	conns  *mongo.Collection
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongodb")
	}

	db := client.Database(database)
	return &MongoStore{
		client: client,
		maps:   db.Collection("maps"),
		nodes:  db.Collection("nodes"),
		conns:  db.Collection("connections"),
	}, nil
}

// creationOrder sorts query results the way records were created, with the
// id as tiebreaker for equal timestamps.
var creationOrder = options.Find().SetSort(bson.D{
	{Key: "created_at", Value: 1},
	{Key: "_id", Value: 1},
})

// CreateMap persists a new map.
func (s *MongoStore) CreateMap(ctx context.Context, m *board.Map) error {
	if err := errors.ValidateID(m.ID); err != nil {
		return err
	}
	if err := errors.ValidateTitle(m.Title); err != nil {
		return err
	}

	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now

	if _, err := s.maps.InsertOne(ctx, m); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.New(errors.ErrCodeInvalidInput, "map already exists: "+m.ID)
		}
		return errors.Wrap(errors.ErrCodeInternal, err, "insert map")
	}
	return nil
}

// GetMap returns map metadata.
func (s *MongoStore) GetMap(ctx context.Context, id string) (*board.Map, error) {
	var m board.Map
	err := s.maps.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodeMapNotFound, "map not found: "+id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "find map")
	}
	return &m, nil
}

// ListMaps returns all maps ordered by creation time.
func (s *MongoStore) ListMaps(ctx context.Context) ([]board.Map, error) {
	cur, err := s.maps.Find(ctx, bson.M{}, creationOrder)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list maps")
	}
	defer cur.Close(ctx)

	var out []board.Map
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode maps")
	}
	return out, nil
}

// RenameMap updates a map's title.
func (s *MongoStore) RenameMap(ctx context.Context, id, title string) error {
	if err := errors.ValidateTitle(title); err != nil {
		return err
	}

	res, err := s.maps.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"title": title, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "rename map")
	}
	if res.MatchedCount == 0 {
		return errors.New(errors.ErrCodeMapNotFound, "map not found: "+id)
	}
	return nil
}

// DeleteMap removes a map and everything in it.
func (s *MongoStore) DeleteMap(ctx context.Context, id string) error {
	if _, err := s.conns.DeleteMany(ctx, bson.M{"map_id": id}); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete connections")
	}
	if _, err := s.nodes.DeleteMany(ctx, bson.M{"map_id": id}); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete nodes")
	}
	if _, err := s.maps.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete map")
	}
	return nil
}

// LoadBoard assembles the full board for a map.
func (s *MongoStore) LoadBoard(ctx context.Context, mapID string) (*board.Board, error) {
	m, err := s.GetMap(ctx, mapID)
	if err != nil {
		return nil, err
	}

	doc := board.Document{Version: board.DocumentVersion, Map: *m}

	cur, err := s.nodes.Find(ctx, bson.M{"map_id": mapID}, creationOrder)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "find nodes")
	}
	if err := cur.All(ctx, &doc.Nodes); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode nodes")
	}

	cur, err = s.conns.Find(ctx, bson.M{"map_id": mapID}, creationOrder)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "find connections")
	}
	if err := cur.All(ctx, &doc.Connections); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode connections")
	}

	return board.ToBoard(doc)
}

// PutNode inserts or replaces a node.
func (s *MongoStore) PutNode(ctx context.Context, n *board.Node) error {
	if err := n.Validate(); err != nil {
		return err
	}
	if err := s.requireMap(ctx, n.MapID); err != nil {
		return err
	}

	now := time.Now().UTC()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	n.UpdatedAt = now

	_, err := s.nodes.ReplaceOne(ctx, bson.M{"_id": n.ID}, n, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "put node")
	}
	return s.touch(ctx, n.MapID, now)
}

// DeleteNode removes a node and its incident connections.
func (s *MongoStore) DeleteNode(ctx context.Context, mapID, nodeID string) error {
	if err := s.requireMap(ctx, mapID); err != nil {
		return err
	}

	res, err := s.nodes.DeleteOne(ctx, bson.M{"_id": nodeID, "map_id": mapID})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete node")
	}
	if res.DeletedCount == 0 {
		return nil
	}

	// Cascade incident connections.
	_, err = s.conns.DeleteMany(ctx, bson.M{
		"map_id": mapID,
		"$or":    []bson.M{{"from": nodeID}, {"to": nodeID}},
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete incident connections")
	}
	return s.touch(ctx, mapID, time.Now().UTC())
}

// PutConnection inserts or replaces a connection.
func (s *MongoStore) PutConnection(ctx context.Context, c *board.Connection) error {
	if err := errors.ValidateID(c.ID); err != nil {
		return err
	}
	if err := s.requireMap(ctx, c.MapID); err != nil {
		return err
	}

	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}

	_, err := s.conns.ReplaceOne(ctx, bson.M{"_id": c.ID}, c, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "put connection")
	}
	return s.touch(ctx, c.MapID, now)
}

// DeleteConnection removes a connection.
func (s *MongoStore) DeleteConnection(ctx context.Context, mapID, connID string) error {
	if err := s.requireMap(ctx, mapID); err != nil {
		return err
	}

	res, err := s.conns.DeleteOne(ctx, bson.M{"_id": connID, "map_id": mapID})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete connection")
	}
	if res.DeletedCount == 0 {
		return nil
	}
	return s.touch(ctx, mapID, time.Now().UTC())
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) requireMap(ctx context.Context, mapID string) error {
	err := s.maps.FindOne(ctx, bson.M{"_id": mapID}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err == mongo.ErrNoDocuments {
		return errors.New(errors.ErrCodeMapNotFound, "map not found: "+mapID)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "find map")
	}
	return nil
}

func (s *MongoStore) touch(ctx context.Context, mapID string, now time.Time) error {
	_, err := s.maps.UpdateOne(ctx, bson.M{"_id": mapID}, bson.M{
		"$set": bson.M{"updated_at": now},
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "touch map")
	}
	return nil
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
