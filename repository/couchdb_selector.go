package repository

import "github.com/walletsign/go-walletsign-server/types"

const (
	// database names
	Users     = "users"     // identity bindings (email -> wallet)
	Documents = "documents" // document metadata and signature lists
	Otp       = "otp"       // one-time passcode challenges
)

type CouchDBSelector struct {
	dbs []Repository
}

func NewCouchDBSelector() *CouchDBSelector {
	return &CouchDBSelector{}
}

// adds a database to the database selector
func (c *CouchDBSelector) AddDB(db Repository) {
	c.dbs = append(c.dbs, db)
}

// returns the required database
func (c *CouchDBSelector) ChooseDB(dbName string) (Repository, error) {
	for i, r := range c.dbs {
		if r.GetDBName() == dbName {
			return c.dbs[i], nil
		}
	}
	return nil, types.ErrNotFound
}
