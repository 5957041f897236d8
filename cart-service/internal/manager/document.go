package manager

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/kanap/cart-service/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const cartsCollection = "carts"

type cartDocument struct {
	ID        string         `bson:"_id"`
	Items     []itemDocument `bson:"items"`
	CreatedAt time.Time      `bson:"created_at"`
	UpdatedAt time.Time      `bson:"updated_at"`
}

type itemDocument struct {
	ProductID string `bson:"product_id"`
	Color     string `bson:"color"`
	Quantity  int    `bson:"quantity"`
	Name      string `bson:"name"`
}

// Document keeps one MongoDB document per session.
type Document struct {
	collection *mongo.Collection
	sessionID  string
}

func NewDocument(db *mongo.Database, sessionID string) *Document {
	if sessionID == "" {
		sessionID = DefaultKey
	}
	return &Document{
		collection: db.Collection(cartsCollection),
		sessionID:  sessionID,
	}
}

func (d *Document) Load(ctx context.Context) (*domain.Cart, error) {
	var doc cartDocument
	err := d.collection.FindOne(ctx, bson.M{"_id": d.sessionID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.NewCart(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	items := make([]domain.LineItem, 0, len(doc.Items))
	for _, it := range doc.Items {
		items = append(items, domain.LineItem{
			ID:       it.ProductID,
			Color:    it.Color,
			Quantity: it.Quantity,
			Name:     it.Name,
		})
	}
	return domain.NewCart(items...), nil
}

func (d *Document) Save(ctx context.Context, cart *domain.Cart) error {
	products := cart.Products()
	items := make([]itemDocument, 0, len(products))
	for _, p := range products {
		items = append(items, itemDocument{
			ProductID: p.ID(),
			Color:     p.Color(),
			Quantity:  p.Quantity(),
			Name:      p.Name(),
		})
	}

	now := time.Now()
	update := bson.M{
		"$set":         bson.M{"items": items, "updated_at": now},
		"$setOnInsert": bson.M{"created_at": now},
	}
	opts := options.Update().SetUpsert(true)

	if _, err := d.collection.UpdateOne(ctx, bson.M{"_id": d.sessionID}, update, opts); err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}
	return nil
}

// CreateIndexes expires carts that have not been touched for 90 days.
func CreateIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(90 * 24 * 60 * 60),
		},
	}

	if _, err := db.Collection(cartsCollection).Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}
