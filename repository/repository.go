package repository

import (
	"context"
)

// Repository is the storage contract of the server. Save is a conditional
// update: writing a document that carries a stale revision fails with
// types.ErrConflict instead of silently overwriting, which is what the
// read-check-write sequences in the services rely on.
type Repository interface {
	GetByID(ctx context.Context, id string) (interface{}, error)
	Save(ctx context.Context, docID string, data interface{}) error
	Find(ctx context.Context, query map[string]interface{}) (interface{}, error)
	BulkUpdate(ctx context.Context, docs []interface{}) error
	Delete(ctx context.Context, id string) error
	GetDBName() string
	GetClient() interface{}
}

// DBSelector hands out the repository for a named database, so services can
// be wired against CouchDB in production and in-memory fakes in tests.
type DBSelector interface {
	ChooseDB(dbName string) (Repository, error)
}
