package mongo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/imoview/realty-crm/internal/core/ports"
)

// row is the fixed shape of every replicated table: an opaque JSON document
// keyed by id. Content is written as a JSON string but tolerated as a native
// document on read, since other writers store it either way.
type row struct {
	ID        string    `bson:"_id"`
	Content   bson.RawValue `bson:"content"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// TableRepository implements ports.RemoteTable over one Mongo database, one
// collection per replicated table. A nil receiver or nil database degrades
// every call to a logged no-op, which is how local-only mode works.
type TableRepository struct {
	db  *mongo.Database
	log zerolog.Logger
}

func NewTableRepository(db *mongo.Database, log zerolog.Logger) *TableRepository {
	return &TableRepository{db: db, log: log}
}

func (r *TableRepository) disabled() bool {
	return r == nil || r.db == nil
}

// FetchAll returns every document in the table, skipping rows whose content
// cannot be parsed.
func (r *TableRepository) FetchAll(ctx context.Context, table string) ([]ports.Document, error) {
	if r.disabled() {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.db.Collection(table).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("fetch all %s: %w", table, err)
	}
	defer cur.Close(ctx)

	var docs []ports.Document
	for cur.Next(ctx) {
		var rw row
		if err := cur.Decode(&rw); err != nil {
			r.log.Warn().Err(err).Str("table", table).Msg("undecodable row skipped")
			continue
		}
		doc, err := parseContent(rw.Content)
		if err != nil {
			r.log.Warn().Err(err).Str("table", table).Str("id", rw.ID).Msg("unparsable content skipped")
			continue
		}
		if _, ok := doc["id"]; !ok {
			doc["id"] = rw.ID
		}
		docs = append(docs, doc)
	}
	return docs, cur.Err()
}

// Upsert writes one document by id, row-level last-writer-wins.
func (r *TableRepository) Upsert(ctx context.Context, table string, doc ports.Document) error {
	if r.disabled() {
		r.log.Debug().Str("table", table).Msg("remote unconfigured, upsert dropped")
		return nil
	}
	id, _ := doc["id"].(string)
	if id == "" {
		return fmt.Errorf("upsert %s: document has no id", table)
	}

	content, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = r.db.Collection(table).ReplaceOne(ctx,
		bson.M{"_id": id},
		bson.M{"_id": id, "content": string(content), "updated_at": time.Now().UTC()},
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert %s/%s: %w", table, id, err)
	}
	return nil
}

// Delete removes one row by id. Deleting a missing row is not an error.
func (r *TableRepository) Delete(ctx context.Context, table, id string) error {
	if r.disabled() {
		r.log.Debug().Str("table", table).Msg("remote unconfigured, delete dropped")
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.db.Collection(table).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete %s/%s: %w", table, id, err)
	}
	return nil
}

// parseContent accepts content stored either as a JSON string or as an
// embedded document.
func parseContent(raw bson.RawValue) (ports.Document, error) {
	switch raw.Type {
	case bson.TypeString:
		var doc ports.Document
		if err := json.Unmarshal([]byte(raw.StringValue()), &doc); err != nil {
			return nil, err
		}
		return doc, nil
	case bson.TypeEmbeddedDocument:
		var doc ports.Document
		if err := raw.Unmarshal(&doc); err != nil {
			return nil, err
		}
		return doc, nil
	default:
		return nil, fmt.Errorf("unsupported content type %s", raw.Type)
	}
}
