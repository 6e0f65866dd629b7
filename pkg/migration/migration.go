// Package migration runs and tracks MongoDB schema migrations (indexes,
// collection options).
//
// Usage (in database/migrations):
//
//	func init() {
//	    migration.Register("20260101000000_users_email_unique", &UsersEmailUnique{})
//	}
//
//	type UsersEmailUnique struct{}
//	func (m *UsersEmailUnique) Up(ctx context.Context, db *mongo.Database) error { ... }
//	func (m *UsersEmailUnique) Down(ctx context.Context, db *mongo.Database) error { ... }
//
// Run from CLI:
//
//	shopfront migrate             // run all pending
//	shopfront migrate:rollback    // rollback last batch
//	shopfront migrate:status
package migration

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/shopfront/pkg/logger"
)

// Collection records applied migrations.
const Collection = "migrations"

// Migration is the interface every migration must implement.
type Migration interface {
	Up(ctx context.Context, db *mongo.Database) error
	Down(ctx context.Context, db *mongo.Database) error
}

type record struct {
	Name  string    `bson:"_id"`
	Batch int       `bson:"batch"`
	RunAt time.Time `bson:"runAt"`
}

// ------------------- Registry -------------------

type registered struct {
	name string
	m    Migration
}

var registry []registered

// Register adds a migration to the global registry. name should be
// timestamp-prefixed; pending migrations run in name order.
func Register(name string, m Migration) {
	registry = append(registry, registered{name: name, m: m})
}

// pending returns registered migrations not in ran, sorted by name.
func pending(all []registered, ran map[string]bool) []registered {
	var out []registered
	for _, reg := range all {
		if !ran[reg.name] {
			out = append(out, reg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// ------------------- Runner -------------------

// Runner executes and tracks migrations.
type Runner struct {
	db  *mongo.Database
	out io.Writer
}

// New creates a Runner that prints progress to out.
func New(db *mongo.Database, out io.Writer) *Runner {
	return &Runner{db: db, out: out}
}

func (r *Runner) records(ctx context.Context) ([]record, error) {
	cur, err := r.db.Collection(Collection).Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "batch", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var out []record
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Run executes all pending migrations in a single batch.
func (r *Runner) Run(ctx context.Context) error {
	ran, err := r.records(ctx)
	if err != nil {
		return fmt.Errorf("migration: fetch applied: %w", err)
	}
	done := make(map[string]bool, len(ran))
	batch := 0
	for _, rec := range ran {
		done[rec.Name] = true
		batch = max(batch, rec.Batch)
	}
	batch++

	todo := pending(registry, done)
	if len(todo) == 0 {
		fmt.Fprintln(r.out, "Nothing to migrate.")
		return nil
	}

	for _, reg := range todo {
		logger.Info("migration: running", "name", reg.name)
		fmt.Fprintf(r.out, "  ▶ Migrating: %s\n", reg.name)

		if err := reg.m.Up(ctx, r.db); err != nil {
			return fmt.Errorf("migration: %s up: %w", reg.name, err)
		}
		rec := record{Name: reg.name, Batch: batch, RunAt: time.Now().UTC()}
		if _, err := r.db.Collection(Collection).InsertOne(ctx, rec); err != nil {
			return fmt.Errorf("migration: record %s: %w", reg.name, err)
		}
		fmt.Fprintf(r.out, "  ✅ Migrated:  %s\n", reg.name)
	}

	logger.Info("migration: done", "ran", len(todo), "batch", batch)
	return nil
}

// Rollback reverses every migration of the most recent batch, newest first.
func (r *Runner) Rollback(ctx context.Context) error {
	ran, err := r.records(ctx)
	if err != nil {
		return fmt.Errorf("migration: fetch applied: %w", err)
	}
	if len(ran) == 0 {
		fmt.Fprintln(r.out, "Nothing to roll back.")
		return nil
	}
	last := ran[len(ran)-1].Batch

	byName := make(map[string]Migration, len(registry))
	for _, reg := range registry {
		byName[reg.name] = reg.m
	}

	for i := len(ran) - 1; i >= 0 && ran[i].Batch == last; i-- {
		rec := ran[i]
		m, ok := byName[rec.Name]
		if !ok {
			return fmt.Errorf("migration: cannot roll back %s: not registered", rec.Name)
		}
		fmt.Fprintf(r.out, "  ◀ Rolling back: %s\n", rec.Name)
		logger.Info("migration: rolling back", "name", rec.Name)

		if err := m.Down(ctx, r.db); err != nil {
			return fmt.Errorf("migration: %s down: %w", rec.Name, err)
		}
		if _, err := r.db.Collection(Collection).DeleteOne(ctx, bson.M{"_id": rec.Name}); err != nil {
			return fmt.Errorf("migration: forget %s: %w", rec.Name, err)
		}
		fmt.Fprintf(r.out, "  ✅ Rolled back:  %s\n", rec.Name)
	}
	return nil
}

// Status prints every registered migration with its batch, or "pending".
func (r *Runner) Status(ctx context.Context) error {
	ran, err := r.records(ctx)
	if err != nil {
		return fmt.Errorf("migration: fetch applied: %w", err)
	}
	batches := make(map[string]int, len(ran))
	for _, rec := range ran {
		batches[rec.Name] = rec.Batch
	}

	names := make([]string, 0, len(registry))
	for _, reg := range registry {
		names = append(names, reg.name)
	}
	sort.Strings(names)

	fmt.Fprintf(r.out, "%-60s  %s\n", "MIGRATION", "BATCH")
	for _, n := range names {
		state := "pending"
		if b, ok := batches[n]; ok {
			state = fmt.Sprint(b)
		}
		fmt.Fprintf(r.out, "%-60s  %s\n", n, state)
	}
	return nil
}
