package main

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/shopfront/app/repositories"
	"github.com/shashiranjanraj/shopfront/config"
	"github.com/shashiranjanraj/shopfront/pkg/database"
	"github.com/shashiranjanraj/shopfront/pkg/logger"
)

var errNeedsMongo = errors.New("this command needs STORE_DRIVER=mongo")

// bootDB loads config and opens the database connection.
func bootDB(ctx context.Context) error {
	if err := config.Load(); err != nil {
		return err
	}
	if config.StoreDriver() != "mongo" {
		return errNeedsMongo
	}
	return database.Connect(ctx)
}

// openStore returns the configured entity store and a func releasing it.
func openStore(ctx context.Context) (*repositories.Store, func(), error) {
	if err := config.Load(); err != nil {
		return nil, nil, err
	}
	if config.StoreDriver() == "memory" {
		logger.Warn("store: using in-memory driver, data is not persisted")
		return repositories.NewMemoryStore(), func() {}, nil
	}
	if err := database.Connect(ctx); err != nil {
		return nil, nil, err
	}
	release := func() {
		if err := database.Disconnect(context.Background()); err != nil {
			logger.Warn("store: disconnect", "error", err)
		}
	}
	return repositories.NewMongoStore(database.DB), release, nil
}
