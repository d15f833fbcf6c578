package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"dentabook/pkg/config"
	mongotx "dentabook/pkg/db/mongo"
	"dentabook/pkg/model"
)

const (
	CollectionName = "Appointments"
)

// AppointmentRepository persists the engine's appointment set.
type AppointmentRepository interface {
	LoadAll(ctx context.Context) ([]*model.Appointment, error)
	Save(ctx context.Context, appointments []*model.Appointment) error
	Ping(ctx context.Context) error
}

type mongoAppointmentRepository struct {
	cfg        *config.Config
	client     *mongo.Client
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoAppointmentRepository(cfg *config.Config) AppointmentRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAppointmentRepository{
		cfg:        cfg,
		client:     cfg.Client.Mongo,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout unless it is a SessionContext,
// which cannot be wrapped without leaving the transaction.
func (r *mongoAppointmentRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < timeout {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// LoadAll returns every appointment that is not cancelled.
func (r *mongoAppointmentRepository) LoadAll(ctx context.Context) ([]*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"status": bson.M{"$ne": model.StatusCancelled}}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appointments []*model.Appointment
	if err = cursor.All(ctx, &appointments); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return appointments, nil
}

// Save makes the collection match the snapshot in one transaction. Live
// documents missing from the snapshot were cancelled and are marked so rather
// than deleted; every appointment in it is upserted. The writes go out as a
// single ordered bulk request, so a save costs one round trip however large
// the set is, though the payload still grows with it.
func (r *mongoAppointmentRepository) Save(ctx context.Context, appointments []*model.Appointment) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	writes := snapshotWrites(appointments, time.Now().UTC().Truncate(time.Millisecond))
	return r.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if _, err := r.collection.BulkWrite(sessCtx, writes, options.BulkWrite().SetOrdered(true)); err != nil {
			return fmt.Errorf("failed to save appointments: %w", err)
		}
		return nil
	})
}

// snapshotWrites marks live documents outside the snapshot cancelled, then
// upserts each appointment by id.
func snapshotWrites(appointments []*model.Appointment, now time.Time) []mongo.WriteModel {
	ids := make([]string, 0, len(appointments))
	for _, a := range appointments {
		ids = append(ids, a.ID)
	}

	writes := make([]mongo.WriteModel, 0, len(appointments)+1)
	writes = append(writes, mongo.NewUpdateManyModel().
		SetFilter(bson.M{
			"_id":    bson.M{"$nin": ids},
			"status": bson.M{"$ne": model.StatusCancelled},
		}).
		SetUpdate(bson.M{"$set": bson.M{
			"status":     model.StatusCancelled,
			"updated_at": now,
		}}))
	for _, a := range appointments {
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": a.ID}).
			SetReplacement(a).
			SetUpsert(true))
	}
	return writes
}

func (r *mongoAppointmentRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}
