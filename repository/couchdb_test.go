package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/walletsign/go-walletsign-server/types"
)

var url = "http://localhost:5689"

func InitMockDatabase(dbName string) (Repository, error) {
	httpmock.Activate()

	mr, mErr := httpmock.NewJsonResponder(201, types.OK{IsOK: true})
	if mErr != nil {
		return nil, mErr
	}
	httpmock.RegisterResponder("PUT", fmt.Sprintf("%s/%s", url, dbName), mr)
	httpmock.RegisterResponder("HEAD", fmt.Sprintf("%s/%s", url, dbName), mr)

	db, err := NewCouchDBRepository(url, dbName, "test", "test", true)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func deactivateMock() {
	httpmock.DeactivateAndReset()
}

func TestInitNewDatabase(t *testing.T) {
	db, err := InitMockDatabase("test")
	defer deactivateMock()
	if err != nil {
		t.Fatal(err)
	}
	if db == nil {
		t.Fatal("db is nil")
	}
}

func TestGetByID(t *testing.T) {
	db, _ := InitMockDatabase("test")
	defer deactivateMock()

	mk, _ := httpmock.NewJsonResponder(201, types.OK{IsOK: true})
	httpmock.RegisterResponder("PUT", fmt.Sprintf("%s/%s/%s", url, "test", "doc1"), mk)

	mk, _ = httpmock.NewJsonResponder(200, types.BaseDocument{ID: "doc1", Rev: "1-abc"})
	httpmock.RegisterResponder("GET", fmt.Sprintf("%s/%s/%s", url, "test", "doc1"), mk)

	err := db.Save(context.Background(), "doc1", &types.BaseDocument{ID: "doc1"})
	if err != nil {
		t.Fatal(err)
	}
	res, err := db.GetByID(context.Background(), "doc1")
	if err != nil {
		t.Fatal(err)
	}
	var doc types.BaseDocument
	if mErr := MapToObject(res, &doc); mErr != nil {
		t.Fatal(mErr)
	}
	assert.Equal(t, "doc1", doc.ID)
	assert.Equal(t, "1-abc", doc.Rev)
}

func TestGetByIDNotFound(t *testing.T) {
	db, _ := InitMockDatabase("test")
	defer deactivateMock()

	mk, _ := httpmock.NewJsonResponder(404, types.CouchDBError{Error: "not_found", Reason: "missing"})
	httpmock.RegisterResponder("GET", fmt.Sprintf("%s/%s/%s", url, "test", "missing"), mk)

	_, err := db.GetByID(context.Background(), "missing")
	assert.Equal(t, types.ErrNotFound, err)
}

func TestSaveStaleRevConflict(t *testing.T) {
	db, _ := InitMockDatabase("test")
	defer deactivateMock()

	mk, _ := httpmock.NewJsonResponder(409, types.CouchDBError{Error: "conflict", Reason: "Document update conflict."})
	httpmock.RegisterResponder("PUT", fmt.Sprintf("%s/%s/%s", url, "test", "doc1"), mk)

	err := db.Save(context.Background(), "doc1", &types.BaseDocument{ID: "doc1", Rev: "1-stale"})
	assert.Equal(t, types.ErrConflict, err)
}

func TestBulkUpdateReportsPerDocConflict(t *testing.T) {
	db, _ := InitMockDatabase("test")
	defer deactivateMock()

	// _bulk_docs answers 201 even when a document inside it failed
	mk, _ := httpmock.NewJsonResponder(201, []types.CouchDBBulkResult{
		{ID: "doc1", Rev: "2-def", OK: true},
		{ID: "doc2", Error: "conflict", Reason: "Document update conflict."},
	})
	httpmock.RegisterResponder("POST", fmt.Sprintf("%s/%s/_bulk_docs", url, "test"), mk)

	err := db.BulkUpdate(context.Background(), []interface{}{
		&types.BaseDocument{ID: "doc1", Rev: "1-abc"},
		&types.BaseDocument{ID: "doc2", Rev: "1-stale"},
	})
	assert.Equal(t, types.ErrConflict, err)
}

func TestBulkUpdateAllOk(t *testing.T) {
	db, _ := InitMockDatabase("test")
	defer deactivateMock()

	mk, _ := httpmock.NewJsonResponder(201, []types.CouchDBBulkResult{
		{ID: "doc1", Rev: "2-def", OK: true},
	})
	httpmock.RegisterResponder("POST", fmt.Sprintf("%s/%s/_bulk_docs", url, "test"), mk)

	err := db.BulkUpdate(context.Background(), []interface{}{
		&types.BaseDocument{ID: "doc1", Rev: "1-abc"},
	})
	assert.NoError(t, err)
}

func TestFind(t *testing.T) {
	db, _ := InitMockDatabase("test")
	defer deactivateMock()

	mk, _ := httpmock.NewJsonResponder(200, map[string]interface{}{
		"docs": []map[string]interface{}{{"_id": "doc1", "_rev": "1-abc"}},
	})
	httpmock.RegisterResponder("POST", fmt.Sprintf("%s/%s/_find", url, "test"), mk)

	resp, err := db.Find(context.Background(), map[string]interface{}{
		"selector": map[string]interface{}{"email": "a@b.c"},
	})
	if err != nil {
		t.Fatal(err)
	}
	var found types.CouchDBFindResponse
	if mErr := MapToObject(resp, &found); mErr != nil {
		t.Fatal(mErr)
	}
	assert.Equal(t, 1, len(found.Docs))
}
