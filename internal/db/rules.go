package pricing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dhavalagnani/rentlytics-final-odoo-sub000/internal/config"
	models "github.com/dhavalagnani/rentlytics-final-odoo-sub000/internal/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RulesDB struct {
	mgo  *mongo.Client
	coll *mongo.Collection
}

func NewRulesDB() (*RulesDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mng := os.Getenv("PRICING_MONGO")
	if mng == "" {
		return nil, fmt.Errorf("env PRICING_MONGO is not set")
	}

	options := options.Client().ApplyURI("mongodb://" + mng)
	client, err := mongo.Connect(ctx, options)
	if err != nil {
		return nil, err
	}
	err = client.Ping(ctx, nil)
	if err != nil {
		return nil, err
	}
	db := client.Database(config.EnvOrDefault("PRICING_MONGO_BASE", "pricingDB"))
	coll := db.Collection("price_rules")

	return &RulesDB{client, coll}, nil
}

func (r RulesDB) Close(ctx context.Context) error {
	return r.mgo.Disconnect(ctx)
}

// Enabled rules that are global or scoped to the product or its category.
// Validity and conditions are checked by the engine.
func (r RulesDB) GetActiveRules(ctx context.Context, productID string, categoryID string) ([]models.PriceRule, error) {
	scope := bson.A{
		bson.M{"productId": bson.M{"$exists": false}, "categoryId": bson.M{"$exists": false}},
	}
	if productID != "" {
		scope = append(scope, bson.M{"productId": productID})
	}
	if categoryID != "" {
		scope = append(scope, bson.M{"categoryId": categoryID})
	}
	filter := bson.M{"enabled": true, "$or": scope}
	return r.find(ctx, filter)
}

func (r RulesDB) GetAllRules(ctx context.Context) ([]models.PriceRule, error) {
	return r.find(ctx, bson.M{})
}

func (r RulesDB) find(ctx context.Context, filter bson.M) ([]models.PriceRule, error) {
	result, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "priority", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer result.Close(ctx)

	rules := []models.PriceRule{}
	for result.Next(ctx) {
		var rule models.PriceRule
		err := result.Decode(&rule)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, result.Err()
}

func (r RulesDB) SaveRule(ctx context.Context, rule models.PriceRule) (uuid.UUID, error) {
	// empty ID means a new rule
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
		_, err := r.coll.InsertOne(ctx, rule)
		if err != nil {
			return uuid.Nil, err
		}
		return rule.ID, nil
	}
	filter := bson.M{"id": rule.ID}
	_, err := r.coll.ReplaceOne(ctx, filter, rule, options.Replace().SetUpsert(true))
	if err != nil {
		return uuid.Nil, err
	}
	return rule.ID, nil
}

func (r RulesDB) GetRule(ctx context.Context, ruleID uuid.UUID) (rule models.PriceRule, err error) {
	filter := bson.M{"id": ruleID}
	err = r.coll.FindOne(ctx, filter).Decode(&rule)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.PriceRule{}, models.ErrNotFound
	}
	return rule, err
}

func (r RulesDB) DeleteRule(ctx context.Context, ruleID uuid.UUID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": ruleID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
