package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jarcoal/httpmock"
	"github.com/walletsign/go-walletsign-server/types"
)

// implements Repository interface using CouchDB
type CouchDBRepository struct {
	client *resty.Client
	dbName string
}

func NewCouchDBRepository(url, dbName string, username string, password string, mock bool) (Repository, error) {
	cl := resty.New().SetBaseURL(url).SetTimeout(time.Second * 10)
	cl.SetHeader("Content-Type", "application/json")
	cl.SetHeader("Accept", "application/json")
	cl.SetBasicAuth(username, password)

	if mock {
		httpmock.ActivateNonDefault(cl.GetClient())
	}

	existsRes, existsErr := cl.R().Head(dbName)
	if existsErr != nil {
		return nil, fmt.Errorf("failed to check if database exists: %s", existsErr.Error())
	}
	if existsRes.StatusCode() == 200 {
		return &CouchDBRepository{cl, dbName}, nil
	}

	// create DB since it doesn't exist
	var ok types.OK
	var dbErr types.CouchDBError
	_, createErr := cl.R().SetResult(&ok).SetError(&dbErr).Put(dbName)
	if createErr != nil {
		return nil, createErr
	}
	if dbErr.Error != "" {
		return nil, fmt.Errorf("failed to create database %s: %s", dbName, dbErr.Error)
	}
	if !ok.IsOK {
		return nil, fmt.Errorf("failed to create database %s", dbName)
	}
	return &CouchDBRepository{cl, dbName}, nil
}

// GetByID returns a document by its ID
func (c *CouchDBRepository) GetByID(ctx context.Context, id string) (interface{}, error) {
	response, err := c.client.R().SetContext(ctx).Get(fmt.Sprintf("%s/%s", c.dbName, id))
	if err != nil {
		return nil, err
	}
	if response.IsError() {
		return nil, handleError(response)
	}
	return response, nil
}

// Save creates a new doc or conditionally updates an existing one. A stale
// _rev in the body surfaces as types.ErrConflict.
func (c *CouchDBRepository) Save(ctx context.Context, docID string, data interface{}) error {
	response, err := c.client.R().SetContext(ctx).SetBody(data).Put(fmt.Sprintf("%s/%s", c.dbName, docID))
	if err != nil {
		return err
	}
	if response.IsError() {
		return handleError(response)
	}
	return nil
}

// Find runs a Mango _find query against the database
func (c *CouchDBRepository) Find(ctx context.Context, query map[string]interface{}) (interface{}, error) {
	response, err := c.client.R().SetContext(ctx).SetBody(query).Post(fmt.Sprintf("%s/_find", c.dbName))
	if err != nil {
		return nil, err
	}
	if response.IsError() {
		return nil, handleError(response)
	}
	return response, nil
}

// BulkUpdate writes (or deletes, with _deleted) multiple documents in one
// call. _bulk_docs reports per-document failures inside a 201 response, so
// the result array is checked entry by entry and a stale revision surfaces
// as types.ErrConflict like a single-document Save.
func (c *CouchDBRepository) BulkUpdate(ctx context.Context, docs []interface{}) error {
	body := map[string]interface{}{
		"docs": docs,
	}
	response, err := c.client.R().SetContext(ctx).SetBody(body).Post(fmt.Sprintf("%s/_bulk_docs", c.dbName))
	if err != nil {
		return err
	}
	if response.IsError() {
		return handleError(response)
	}
	var results []types.CouchDBBulkResult
	if uErr := json.Unmarshal(response.Body(), &results); uErr != nil {
		return uErr
	}
	for _, r := range results {
		if r.Error == "conflict" {
			return types.ErrConflict
		}
		if r.Error != "" {
			return fmt.Errorf("bulk update of %s failed: %s", r.ID, r.Error)
		}
	}
	return nil
}

// Delete deletes a document by its ID
func (c *CouchDBRepository) Delete(ctx context.Context, id string) error {
	resp, err := c.GetByID(ctx, id)
	if err != nil {
		return err
	}
	var doc types.BaseDocument
	if mErr := MapToObject(resp, &doc); mErr != nil {
		return mErr
	}

	response, delErr := c.client.R().SetContext(ctx).SetQueryParam("rev", doc.Rev).Delete(fmt.Sprintf("%s/%s", c.dbName, id))
	if delErr != nil {
		return delErr
	}
	if response.IsError() {
		return handleError(response)
	}
	return nil
}

// return name of the database
func (c *CouchDBRepository) GetDBName() string {
	return c.dbName
}

// returns a resty client
func (c *CouchDBRepository) GetClient() interface{} {
	return c.client
}
