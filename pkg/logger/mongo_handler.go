package logger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	sinkQueueSize  = 4096
	sinkBatchSize  = 50
	sinkFlushEvery = 2 * time.Second
	sinkWriteLimit = 5 * time.Second
)

// LogDocument is one stored log line. The ids used to trace an order through
// the service are lifted out of attrs so they can be indexed.
type LogDocument struct {
	Time      time.Time `bson:"time"`
	Level     string    `bson:"level"`
	Msg       string    `bson:"msg"`
	RequestID string    `bson:"request_id,omitempty"`
	OrderID   string    `bson:"order_id,omitempty"`
	UserID    string    `bson:"user_id,omitempty"`
	Attrs     bson.M    `bson:"attrs,omitempty"`
}

// promoted maps top-level attr keys to the LogDocument field they fill.
var promoted = map[string]func(*LogDocument, string){
	"request_id": func(d *LogDocument, v string) { d.RequestID = v },
	"order_id":   func(d *LogDocument, v string) { d.OrderID = v },
	"user_id":    func(d *LogDocument, v string) { d.UserID = v },
}

// sink is the state shared by a MongoHandler and every handler derived from
// it with WithAttrs/WithGroup.
type sink struct {
	col     *mongo.Collection
	client  *mongo.Client
	queue   chan LogDocument
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
	dropped atomic.Int64
}

// MongoHandler writes records to a MongoDB collection off the request path.
// Records queue on a buffered channel and one goroutine inserts them in
// batches; a record that finds the queue full is dropped and counted.
type MongoHandler struct {
	*sink
	attrs  []slog.Attr
	groups []string
}

// NewMongoHandler connects to uri and logs into db.collection. Documents
// expire after retention (0 keeps them forever). Call Close when done.
func NewMongoHandler(uri, db, collection string, retention time.Duration) (*MongoHandler, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).
		SetConnectTimeout(5*time.Second).
		SetServerSelectionTimeout(5*time.Second).
		SetMaxPoolSize(10))
	if err != nil {
		return nil, fmt.Errorf("logger: mongo sink connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("logger: mongo sink ping: %w", err)
	}

	col := client.Database(db).Collection(collection)
	timeIdx := options.Index()
	if retention > 0 {
		timeIdx.SetExpireAfterSeconds(int32(retention / time.Second))
	}
	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "time", Value: 1}}, Options: timeIdx},
		{Keys: bson.D{{Key: "order_id", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "request_id", Value: 1}}, Options: options.Index().SetSparse(true)},
	})

	h := &MongoHandler{sink: newSink(col, client)}
	go h.drain()
	return h, nil
}

func newSink(col *mongo.Collection, client *mongo.Client) *sink {
	return &sink{
		col:     col,
		client:  client,
		queue:   make(chan LogDocument, sinkQueueSize),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

func (h *MongoHandler) Enabled(_ context.Context, l slog.Level) bool { return l >= slog.LevelInfo }

func (h *MongoHandler) Handle(_ context.Context, r slog.Record) error {
	doc := h.document(r)
	select {
	case h.queue <- doc:
	default:
		h.dropped.Add(1)
	}
	return nil
}

func (h *MongoHandler) document(r slog.Record) LogDocument {
	doc := LogDocument{Time: r.Time, Level: r.Level.String(), Msg: r.Message, Attrs: bson.M{}}
	for _, a := range h.attrs {
		h.collect(&doc, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.collect(&doc, a)
		return true
	})
	if len(doc.Attrs) == 0 {
		doc.Attrs = nil
	}
	return doc
}

func (h *MongoHandler) collect(doc *LogDocument, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if set, ok := promoted[a.Key]; ok && len(h.groups) == 0 {
		set(doc, a.Value.String())
		return
	}
	key := a.Key
	for i := len(h.groups) - 1; i >= 0; i-- {
		key = h.groups[i] + "." + key
	}
	put(doc.Attrs, key, a.Value)
}

// put stores v under key, flattening groups and stringifying values bson
// cannot encode as-is.
func put(attrs bson.M, key string, v slog.Value) {
	switch v.Kind() {
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			attrs[key] = err.Error()
			return
		}
		attrs[key] = fmt.Sprint(v.Any())
	case slog.KindDuration:
		attrs[key] = v.Duration().String()
	case slog.KindGroup:
		for _, g := range v.Group() {
			put(attrs, key+"."+g.Key, g.Value.Resolve())
		}
	default:
		attrs[key] = v.Any()
	}
}

func (h *MongoHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &MongoHandler{sink: h.sink, attrs: append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...), groups: h.groups}
}

func (h *MongoHandler) WithGroup(name string) slog.Handler {
	return &MongoHandler{sink: h.sink, attrs: h.attrs, groups: append(h.groups[:len(h.groups):len(h.groups)], name)}
}

// Dropped reports how many records were discarded because the queue was full.
func (h *MongoHandler) Dropped() int64 { return h.dropped.Load() }

func (s *sink) drain() {
	defer close(s.stopped)
	ticker := time.NewTicker(sinkFlushEvery)
	defer ticker.Stop()

	batch := make([]any, 0, sinkBatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), sinkWriteLimit)
		defer cancel()
		_, _ = s.col.InsertMany(ctx, batch)
		batch = batch[:0]
	}

	for {
		select {
		case doc := <-s.queue:
			batch = append(batch, doc)
			if len(batch) >= sinkBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.done:
			for len(s.queue) > 0 {
				batch = append(batch, <-s.queue)
				if len(batch) >= sinkBatchSize {
					flush()
				}
			}
			flush()
			return
		}
	}
}

// Close flushes queued records and disconnects. Safe to call more than once.
func (h *MongoHandler) Close() {
	h.once.Do(func() { close(h.done) })
	<-h.stopped
	if n := h.dropped.Load(); n > 0 {
		L.Warn("logger: mongo sink dropped records", "count", n)
	}
	ctx, cancel := context.WithTimeout(context.Background(), sinkWriteLimit)
	defer cancel()
	_ = h.client.Disconnect(ctx)
}

// MultiHandler sends each record to every handler that accepts its level.
type MultiHandler struct {
	handlers []slog.Handler
}

func NewMultiHandler(hs ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: hs}
}

func (m *MultiHandler) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (m *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			_ = h.Handle(ctx, r.Clone())
		}
	}
	return nil
}

func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return m.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (m *MultiHandler) WithGroup(name string) slog.Handler {
	return m.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (m *MultiHandler) each(fn func(slog.Handler) slog.Handler) *MultiHandler {
	hs := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		hs[i] = fn(h)
	}
	return &MultiHandler{handlers: hs}
}
