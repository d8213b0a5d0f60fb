package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/walletsign/go-walletsign-server/global"
	"github.com/walletsign/go-walletsign-server/repository"
	"github.com/walletsign/go-walletsign-server/types"
	"github.com/walletsign/go-walletsign-server/util"
)

// DocumentService manages document metadata in CouchDB and the binary
// content in object storage. Content is write-once, decisions reference it
// by its sha256 hash.
type DocumentService struct {
	documentRepo repository.Repository
	s3Service    *S3Service
}

func NewDocumentService(dbSelector repository.DBSelector, s3Service *S3Service) *DocumentService {
	documentRepo, err := dbSelector.ChooseDB(repository.Documents)
	if err != nil {
		panic(err)
	}
	return &DocumentService{
		documentRepo: documentRepo,
		s3Service:    s3Service,
	}
}

// CreateDocument stores the content and registers the document metadata.
// The same content can only be registered once, a duplicate hash is a conflict.
func (ds *DocumentService) CreateDocument(name string, content []byte, requiredSignatures int) (*types.Document, error) {
	if name == "" || len(content) == 0 || requiredSignatures <= 0 {
		return nil, types.ErrBadRequest
	}
	hash := util.Sha256Hex(content)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	existing, eErr := ds.findByHash(ctx, hash)
	if eErr != nil && eErr != types.ErrNotFound {
		return nil, eErr
	}
	if existing != nil {
		return nil, types.ErrConflict
	}

	id := uuid.NewString()
	objectKey := fmt.Sprintf("documents/%s", id)
	if ds.s3Service != nil {
		if _, uErr := ds.s3Service.UploadDocument(global.Conf.Storage.Bucket, objectKey, content); uErr != nil {
			return nil, uErr
		}
	}

	doc := &types.Document{
		Name:               name,
		Hash:               hash,
		ObjectKey:          objectKey,
		UploadedAt:         time.Now().UTC().UnixMilli(),
		Signatures:         []types.SignatureRecord{},
		RequiredSignatures: requiredSignatures,
		Status:             types.StatusUnsigned,
	}
	doc.ID = id
	if sErr := ds.documentRepo.Save(ctx, id, doc); sErr != nil {
		return nil, sErr
	}
	return doc, nil
}

// GetDocument returns the document metadata by its ID
func (ds *DocumentService) GetDocument(docID string) (*types.Document, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	resp, err := ds.documentRepo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	var doc types.Document
	if mErr := repository.MapToObject(resp, &doc); mErr != nil {
		return nil, mErr
	}
	return &doc, nil
}

// GetContent fetches the document binary from object storage
func (ds *DocumentService) GetContent(docID string) (*types.Document, []byte, error) {
	doc, err := ds.GetDocument(docID)
	if err != nil {
		return nil, nil, err
	}
	content, dErr := ds.s3Service.DownloadDocument(global.Conf.Storage.Bucket, doc.ObjectKey)
	if dErr != nil {
		return nil, nil, dErr
	}
	return doc, content, nil
}

// ListDocuments returns metadata-only views of all documents, with the
// per-wallet decision flags resolved for the caller
func (ds *DocumentService) ListDocuments(wallet string) ([]types.DocumentListItem, error) {
	walletLc := util.NormalizeWalletAddress(wallet)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"uploadedAt": map[string]interface{}{"$gt": 0},
		},
		"limit": 200,
	}
	resp, fErr := ds.documentRepo.Find(ctx, query)
	if fErr != nil {
		return nil, fErr
	}
	var found types.CouchDBFindResponse
	if mErr := repository.MapToObject(resp, &found); mErr != nil {
		return nil, mErr
	}

	items := make([]types.DocumentListItem, 0, len(found.Docs))
	for _, raw := range found.Docs {
		var doc types.Document
		if mErr := repository.MapToObject(raw, &doc); mErr != nil {
			return nil, mErr
		}
		item := types.DocumentListItem{
			ID:         doc.ID,
			Title:      doc.Name,
			Status:     doc.Status,
			UploadedAt: doc.UploadedAt,
		}
		for _, s := range doc.Signatures {
			if strings.EqualFold(s.WalletAddress, walletLc) {
				item.SignedByMe = s.Decision == types.DecisionAccepted
				item.RejectedByMe = s.Decision == types.DecisionRejected
				break
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// DeleteDocument removes the metadata and the stored content. A document
// with recorded decisions is immutable and cannot be deleted.
func (ds *DocumentService) DeleteDocument(docID string) error {
	doc, err := ds.GetDocument(docID)
	if err != nil {
		return err
	}
	if len(doc.Signatures) > 0 {
		return types.ErrConflict
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	if ds.s3Service != nil {
		dErr := ds.s3Service.DeleteDocument(global.Conf.Storage.Bucket, doc.ObjectKey)
		if dErr != nil && dErr != types.ErrNotFound {
			return dErr
		}
	}
	return ds.documentRepo.Delete(ctx, docID)
}

func (ds *DocumentService) findByHash(ctx context.Context, hash string) (*types.Document, error) {
	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"hash": hash,
		},
		"limit": 1,
	}
	resp, fErr := ds.documentRepo.Find(ctx, query)
	if fErr != nil {
		return nil, fErr
	}
	var found types.CouchDBFindResponse
	if mErr := repository.MapToObject(resp, &found); mErr != nil {
		return nil, mErr
	}
	if len(found.Docs) == 0 {
		return nil, types.ErrNotFound
	}
	var doc types.Document
	if mErr := repository.MapToObject(found.Docs[0], &doc); mErr != nil {
		return nil, mErr
	}
	return &doc, nil
}
