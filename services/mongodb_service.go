package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pnodewatch/config"
	"pnodewatch/models"
)

// Collection names.
const (
	CollectionNetworkSnapshots = "network_snapshots"
	CollectionNodeTrends       = "node_trends"
	CollectionAlertHistory     = "alert_history"
	CollectionNodeRegistry     = "node_registry" // tracks first_seen per node
)

// MongoDBService persists trend snapshots and alert history. Every
// method is a no-op when the service is disabled, so callers never need
// to branch on availability.
type MongoDBService struct {
	client  *mongo.Client
	db      *mongo.Database
	enabled bool
}

func NewMongoDBService(cfg *config.Config) (*MongoDBService, error) {
	if !cfg.MongoDB.Enabled {
		log.Println("MongoDB is disabled in configuration")
		return &MongoDBService{enabled: false}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	service := &MongoDBService{
		client:  client,
		db:      client.Database(cfg.MongoDB.Database),
		enabled: true,
	}

	if err := service.createIndexes(ctx); err != nil {
		log.Printf("Warning: failed to create indexes: %v", err)
	}

	log.Printf("MongoDB connected successfully to database: %s", cfg.MongoDB.Database)
	return service, nil
}

func (m *MongoDBService) Enabled() bool {
	return m != nil && m.enabled
}

func (m *MongoDBService) createIndexes(ctx context.Context) error {
	_, err := m.db.Collection(CollectionNetworkSnapshots).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "timestamp", Value: -1}},
		Options: options.Index().SetName("timestamp_desc"),
	})
	if err != nil {
		return err
	}

	_, err = m.db.Collection(CollectionNodeTrends).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "node_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("node_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("timestamp_desc"),
		},
	})
	if err != nil {
		return err
	}

	_, err = m.db.Collection(CollectionNodeRegistry).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "node_id", Value: 1}},
		Options: options.Index().SetName("node_id").SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = m.db.Collection(CollectionAlertHistory).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "timestamp", Value: -1}},
		Options: options.Index().SetName("timestamp_desc"),
	})
	return err
}

func (m *MongoDBService) Close() error {
	if !m.Enabled() || m.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// ============================================
// Inserts
// ============================================

func (m *MongoDBService) InsertNetworkSnapshot(ctx context.Context, snapshot *models.NetworkSnapshot) error {
	if !m.Enabled() {
		return nil
	}
	_, err := m.db.Collection(CollectionNetworkSnapshots).InsertOne(ctx, snapshot)
	return err
}

func (m *MongoDBService) InsertNodeTrendPoint(ctx context.Context, point *models.NodeTrendPoint) error {
	if !m.Enabled() {
		return nil
	}
	_, err := m.db.Collection(CollectionNodeTrends).InsertOne(ctx, point)
	return err
}

func (m *MongoDBService) InsertAlertHistory(ctx context.Context, entry *models.AlertHistoryEntry) error {
	if !m.Enabled() {
		return nil
	}
	_, err := m.db.Collection(CollectionAlertHistory).InsertOne(ctx, entry)
	return err
}

func (m *MongoDBService) RegisterNode(ctx context.Context, nodeID string, firstSeen time.Time) error {
	if !m.Enabled() {
		return nil
	}

	filter := bson.M{"node_id": nodeID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"node_id":    nodeID,
			"first_seen": firstSeen,
		},
	}
	_, err := m.db.Collection(CollectionNodeRegistry).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// ============================================
// Queries
// ============================================

func (m *MongoDBService) GetNetworkSnapshotsRange(ctx context.Context, start, end time.Time) ([]models.NetworkSnapshot, error) {
	if !m.Enabled() {
		return nil, fmt.Errorf("MongoDB not enabled")
	}

	filter := bson.M{"timestamp": bson.M{"$gte": start, "$lte": end}}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})

	cursor, err := m.db.Collection(CollectionNetworkSnapshots).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var snapshots []models.NetworkSnapshot
	if err := cursor.All(ctx, &snapshots); err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (m *MongoDBService) GetNodeTrendRange(ctx context.Context, nodeID string, start, end time.Time) ([]models.NodeTrendPoint, error) {
	if !m.Enabled() {
		return nil, fmt.Errorf("MongoDB not enabled")
	}

	filter := bson.M{
		"node_id":   nodeID,
		"timestamp": bson.M{"$gte": start, "$lte": end},
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})

	cursor, err := m.db.Collection(CollectionNodeTrends).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var points []models.NodeTrendPoint
	if err := cursor.All(ctx, &points); err != nil {
		return nil, err
	}
	return points, nil
}

func (m *MongoDBService) GetRecentAlertHistory(ctx context.Context, limit int) ([]models.AlertHistoryEntry, error) {
	if !m.Enabled() {
		return nil, fmt.Errorf("MongoDB not enabled")
	}
	if limit <= 0 {
		limit = 100
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := m.db.Collection(CollectionAlertHistory).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.AlertHistoryEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
