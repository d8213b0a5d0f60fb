package services

import (
	"context"
	"time"

	"github.com/go-kit/log/level"
	"github.com/walletsign/go-walletsign-server/global"
	"github.com/walletsign/go-walletsign-server/repository"
	"github.com/walletsign/go-walletsign-server/types"
	"github.com/walletsign/go-walletsign-server/util"
)

// SignatureService records party decisions on documents. A decision is
// append-only: once a wallet has accepted or rejected, nothing changes it,
// and a document that reached "signed" takes no further decisions.
type SignatureService struct {
	documentRepo repository.Repository
}

func NewSignatureService(dbSelector repository.DBSelector) *SignatureService {
	documentRepo, err := dbSelector.ChooseDB(repository.Documents)
	if err != nil {
		panic(err)
	}
	return &SignatureService{
		documentRepo: documentRepo,
	}
}

// RecordDecision appends the party decision to the document and re-derives
// its status. The read-check-append-write sequence runs under CouchDB
// revision checking: a concurrent writer makes Save fail with ErrConflict
// and the whole sequence re-runs against the fresh document, so the duplicate
// and terminal-state guards always see the latest signature list.
func (ss *SignatureService) RecordDecision(docID string, input *types.InputDecision) (*types.Document, error) {
	decision, dErr := types.ParseDecision(input.Decision)
	if dErr != nil {
		return nil, dErr
	}
	walletLc := util.NormalizeWalletAddress(input.WalletAddress)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	for attempt := 0; attempt < 5; attempt++ {
		resp, gErr := ss.documentRepo.GetByID(ctx, docID)
		if gErr != nil {
			return nil, gErr
		}
		var doc types.Document
		if mErr := repository.MapToObject(resp, &doc); mErr != nil {
			return nil, mErr
		}

		if doc.Status == types.StatusSigned {
			return nil, types.ErrAlreadyCompleted
		}
		if doc.HasDecisionFrom(walletLc) {
			return nil, types.ErrAlreadyDecided
		}
		if util.NormalizeHash(input.DocumentHash) != util.NormalizeHash(doc.Hash) {
			return nil, types.ErrHashMismatch
		}

		credential := input.PublicCredential
		if credential == "" {
			credential = walletLc
		}
		now := time.Now().UTC().UnixMilli()
		record := types.SignatureRecord{
			Email:            util.NormalizeEmail(input.Email),
			Name:             input.Name,
			WalletAddress:    walletLc,
			Decision:         decision,
			DocumentHash:     util.NormalizeHash(input.DocumentHash),
			SignaturePayload: input.SignaturePayload,
			TxRef:            input.TxRef,
			PublicCredential: credential,
			IP:               input.IP,
			Location:         input.Location,
			UserAgent:        input.UserAgent,
			DecidedAt:        now,
			RecordedAt:       now,
		}
		doc.Signatures = append(doc.Signatures, record)
		doc.RecomputeStatus()

		if svErr := ss.documentRepo.Save(ctx, doc.ID, &doc); svErr != nil {
			if svErr == types.ErrConflict {
				continue
			}
			return nil, svErr
		}
		return &doc, nil
	}
	level.Error(global.Logger).Log("msg", "decision write kept conflicting", "docID", docID)
	return nil, types.ErrInternal
}
