package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/azmiruddin-143/Local-Guide-Server/pkg/config"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/model"
)

const (
	CollectionName = "Platform_settings"

	// singletonID pins every read and write to the same document.
	singletonID = "platform"
)

type mongoSettingsRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type SettingsRepository interface {
	Get(ctx context.Context) (*model.PlatformSettings, error)
	Save(ctx context.Context, settings *model.PlatformSettings) error
}

func NewMongoSettingsRepository(cfg *config.Config) SettingsRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoSettingsRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

// Get returns the settings document, seeding the defaults on first access.
func (r *mongoSettingsRepository) Get(ctx context.Context) (*model.PlatformSettings, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var settings model.PlatformSettings
	err := r.collection.FindOne(ctx, bson.M{"_id": singletonID}).Decode(&settings)
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to load platform settings: %w", err)
	}

	seeded := model.DefaultPlatformSettings()
	seeded.ID = singletonID
	seeded.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if err := r.Save(ctx, seeded); err != nil {
		return nil, err
	}
	return seeded, nil
}

func (r *mongoSettingsRepository) Save(ctx context.Context, settings *model.PlatformSettings) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	settings.ID = singletonID
	settings.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": singletonID}, settings, opts)
	if err != nil {
		return fmt.Errorf("failed to save platform settings: %w", err)
	}
	return nil
}
