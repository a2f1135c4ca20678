package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"sales-analytics/internal/model"
)

const mongoDatabase = "salesdb"

type MongoStore struct {
	client *mongo.Client
}

func (ms *MongoStore) Connect(dsn string) error {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(dsn))
	if err != nil {
		return err
	}
	ms.client = client
	return nil
}

func (ms *MongoStore) Close() error {
	return ms.client.Disconnect(context.Background())
}

func (ms *MongoStore) transactions() *mongo.Collection {
	return ms.client.Database(mongoDatabase).Collection("sales_transactions")
}

func (ms *MongoStore) parameters() *mongo.Collection {
	return ms.client.Database(mongoDatabase).Collection("config_parameters")
}

func (ms *MongoStore) Init(ctx context.Context) error {
	// Schema is flexible; only the date index needs creating.
	_, err := ms.transactions().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "sale_date", Value: 1}},
	})
	return err
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(d.String())
}

func fromDecimal128(d primitive.Decimal128) (decimal.Decimal, error) {
	return decimal.NewFromString(d.String())
}

func (ms *MongoStore) InsertTransactions(ctx context.Context, txs []model.Transaction) error {
	docs := make([]interface{}, 0, len(txs))
	for _, t := range txs {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvariant, err)
		}
		unitPrice, err := toDecimal128(t.UnitPrice)
		if err != nil {
			return err
		}
		totalAmount, err := toDecimal128(t.TotalAmount)
		if err != nil {
			return err
		}
		docs = append(docs, bson.M{
			"_id":              t.ID,
			"sale_date":        t.Date,
			"customer_id":      t.CustomerID,
			"gender":           t.Gender,
			"age":              t.Age,
			"product_category": t.Category,
			"quantity":         t.Quantity,
			"unit_price":       unitPrice,
			"total_amount":     totalAmount,
		})
	}
	if len(docs) == 0 {
		return nil
	}

	_, err := ms.transactions().InsertMany(ctx, docs)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", ErrDuplicateTransaction, err)
	}
	return err
}

func (ms *MongoStore) DailyAggregate(ctx context.Context, date time.Time) (*model.DailyAggregate, error) {
	// _id is unique per transaction, so the group size is the distinct
	// transaction count.
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"sale_date": date}}},
		{{Key: "$group", Value: bson.M{
			"_id":     "$sale_date",
			"revenue": bson.M{"$sum": "$total_amount"},
			"orders":  bson.M{"$sum": 1},
		}}},
	}

	cursor, err := ms.transactions().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var row struct {
		Revenue primitive.Decimal128 `bson:"revenue"`
		Orders  int64                `bson:"orders"`
	}
	if !cursor.Next(ctx) {
		return nil, cursor.Err()
	}
	if err := cursor.Decode(&row); err != nil {
		return nil, err
	}

	rev, err := fromDecimal128(row.Revenue)
	if err != nil {
		return nil, err
	}
	return &model.DailyAggregate{Date: date, Revenue: rev, Orders: row.Orders}, nil
}

func (ms *MongoStore) CategoryAggregates(ctx context.Context, date time.Time) ([]model.CategoryAggregate, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"sale_date": date}}},
		{{Key: "$group", Value: bson.M{
			"_id":     "$product_category",
			"revenue": bson.M{"$sum": "$total_amount"},
		}}},
	}

	cursor, err := ms.transactions().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var aggs []model.CategoryAggregate
	for cursor.Next(ctx) {
		var row struct {
			Category string               `bson:"_id"`
			Revenue  primitive.Decimal128 `bson:"revenue"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		rev, err := fromDecimal128(row.Revenue)
		if err != nil {
			return nil, err
		}
		aggs = append(aggs, model.CategoryAggregate{Date: date, Category: row.Category, Revenue: rev})
	}
	return aggs, cursor.Err()
}

func (ms *MongoStore) GetParameter(ctx context.Context, name string) (decimal.Decimal, bool, error) {
	var doc struct {
		Value primitive.Decimal128 `bson:"value"`
	}
	err := ms.parameters().FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}

	v, err := fromDecimal128(doc.Value)
	if err != nil {
		return decimal.Zero, false, err
	}
	return v, true, nil
}

func (ms *MongoStore) EnsureParameter(ctx context.Context, name string, value decimal.Decimal) error {
	v, err := toDecimal128(value)
	if err != nil {
		return err
	}
	_, err = ms.parameters().UpdateOne(ctx,
		bson.M{"_id": name},
		bson.M{"$setOnInsert": bson.M{"value": v}},
		options.Update().SetUpsert(true))
	return err
}
