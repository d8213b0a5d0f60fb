package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/walletsign/go-walletsign-server/repository"
	"github.com/walletsign/go-walletsign-server/types"
)

// fakeRepository is an in-memory Repository with the same conditional
// update semantics as CouchDB: a Save carrying a stale _rev fails with
// types.ErrConflict. GetByID and Find hand out raw JSON the way the real
// repository hands out response bodies, so MapToObject works unchanged.
type fakeRepository struct {
	mu     sync.Mutex
	dbName string
	docs   map[string][]byte
	revs   map[string]int
}

func newFakeRepository(dbName string) *fakeRepository {
	return &fakeRepository{
		dbName: dbName,
		docs:   make(map[string][]byte),
		revs:   make(map[string]int),
	}
}

func (f *fakeRepository) GetByID(ctx context.Context, id string) (interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.docs[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return data, nil
}

func (f *fakeRepository) Save(ctx context.Context, docID string, data interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saveLocked(docID, data)
}

func (f *fakeRepository) saveLocked(docID string, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	var fields map[string]interface{}
	if uErr := json.Unmarshal(raw, &fields); uErr != nil {
		return uErr
	}

	current := f.revs[docID]
	if current > 0 {
		rev, _ := fields["_rev"].(string)
		if rev != fmt.Sprintf("%d-fake", current) {
			return types.ErrConflict
		}
	}
	next := current + 1
	fields["_id"] = docID
	fields["_rev"] = fmt.Sprintf("%d-fake", next)

	stored, mErr := json.Marshal(fields)
	if mErr != nil {
		return mErr
	}
	f.docs[docID] = stored
	f.revs[docID] = next
	return nil
}

func (f *fakeRepository) Find(ctx context.Context, query map[string]interface{}) (interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	selector, _ := query["selector"].(map[string]interface{})
	matched := make([]map[string]interface{}, 0)
	for _, raw := range f.docs {
		var fields map[string]interface{}
		if uErr := json.Unmarshal(raw, &fields); uErr != nil {
			return nil, uErr
		}
		if matchesSelector(fields, selector) {
			matched = append(matched, fields)
		}
	}

	if sortSpec, ok := query["sort"].([]map[string]string); ok && len(sortSpec) > 0 {
		for field, dir := range sortSpec[0] {
			sortField, desc := field, dir == "desc"
			sort.Slice(matched, func(i, j int) bool {
				a, _ := matched[i][sortField].(float64)
				b, _ := matched[j][sortField].(float64)
				if desc {
					return a > b
				}
				return a < b
			})
		}
	}

	if limit, ok := query["limit"].(int); ok && len(matched) > limit {
		matched = matched[:limit]
	}

	docs := make([]json.RawMessage, 0, len(matched))
	for _, fields := range matched {
		raw, mErr := json.Marshal(fields)
		if mErr != nil {
			return nil, mErr
		}
		docs = append(docs, raw)
	}
	out, mErr := json.Marshal(types.CouchDBFindResponse{Docs: docs})
	if mErr != nil {
		return nil, mErr
	}
	return out, nil
}

func matchesSelector(fields, selector map[string]interface{}) bool {
	for key, want := range selector {
		got := fields[key]
		switch w := want.(type) {
		case map[string]interface{}:
			gotNum, ok := got.(float64)
			if !ok {
				return false
			}
			for op, bound := range w {
				boundNum := toFloat(bound)
				switch op {
				case "$lt":
					if !(gotNum < boundNum) {
						return false
					}
				case "$gt":
					if !(gotNum > boundNum) {
						return false
					}
				default:
					return false
				}
			}
		default:
			if fmt.Sprintf("%v", got) != fmt.Sprintf("%v", want) {
				return false
			}
		}
	}
	return true
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

func (f *fakeRepository) BulkUpdate(ctx context.Context, docs []interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, doc := range docs {
		raw, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		var base types.BaseDocument
		if uErr := json.Unmarshal(raw, &base); uErr != nil {
			return uErr
		}
		if base.Deleted {
			delete(f.docs, base.ID)
			delete(f.revs, base.ID)
			continue
		}
		if sErr := f.saveLocked(base.ID, doc); sErr != nil {
			return sErr
		}
	}
	return nil
}

func (f *fakeRepository) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.docs[id]; !ok {
		return types.ErrNotFound
	}
	delete(f.docs, id)
	delete(f.revs, id)
	return nil
}

func (f *fakeRepository) GetDBName() string {
	return f.dbName
}

func (f *fakeRepository) GetClient() interface{} {
	return nil
}

// fakeSelector wires the fake repositories under the production DB names
type fakeSelector struct {
	repos map[string]repository.Repository
}

func newFakeSelector() *fakeSelector {
	return &fakeSelector{
		repos: map[string]repository.Repository{
			repository.Users:     newFakeRepository(repository.Users),
			repository.Documents: newFakeRepository(repository.Documents),
			repository.Otp:       newFakeRepository(repository.Otp),
		},
	}
}

func (s *fakeSelector) ChooseDB(dbName string) (repository.Repository, error) {
	repo, ok := s.repos[dbName]
	if !ok {
		return nil, types.ErrNotFound
	}
	return repo, nil
}
