package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/walletsign/go-walletsign-server/types"
	"github.com/walletsign/go-walletsign-server/util"
)

func TestCreateDocument(t *testing.T) {
	ds := NewDocumentService(newFakeSelector(), nil)

	content := []byte("contract body v1")
	doc, err := ds.CreateDocument("terms.pdf", content, 2)
	assert.NoError(t, err)
	assert.Equal(t, util.Sha256Hex(content), doc.Hash)
	assert.Equal(t, types.StatusUnsigned, doc.Status)
	assert.Equal(t, 2, doc.RequiredSignatures)
	assert.Empty(t, doc.Signatures)

	got, err := ds.GetDocument(doc.ID)
	assert.NoError(t, err)
	assert.Equal(t, doc.Hash, got.Hash)
}

func TestCreateDocumentValidation(t *testing.T) {
	ds := NewDocumentService(newFakeSelector(), nil)

	_, err := ds.CreateDocument("", []byte("x"), 1)
	assert.Equal(t, types.ErrBadRequest, err)
	_, err = ds.CreateDocument("terms.pdf", nil, 1)
	assert.Equal(t, types.ErrBadRequest, err)
	_, err = ds.CreateDocument("terms.pdf", []byte("x"), 0)
	assert.Equal(t, types.ErrBadRequest, err)
}

func TestCreateDocumentDuplicateContent(t *testing.T) {
	ds := NewDocumentService(newFakeSelector(), nil)

	content := []byte("contract body v1")
	_, err := ds.CreateDocument("terms.pdf", content, 2)
	assert.NoError(t, err)

	_, err = ds.CreateDocument("terms-copy.pdf", content, 2)
	assert.Equal(t, types.ErrConflict, err)
}

func TestDeleteDocument(t *testing.T) {
	ds := NewDocumentService(newFakeSelector(), nil)

	doc, err := ds.CreateDocument("terms.pdf", []byte("contract body v1"), 1)
	assert.NoError(t, err)

	assert.NoError(t, ds.DeleteDocument(doc.ID))
	_, err = ds.GetDocument(doc.ID)
	assert.Equal(t, types.ErrNotFound, err)

	assert.Equal(t, types.ErrNotFound, ds.DeleteDocument("missing-doc"))
}

func TestDeleteDocumentWithDecisionsRefused(t *testing.T) {
	selector := newFakeSelector()
	ds := NewDocumentService(selector, nil)
	ss := NewSignatureService(selector)

	doc, err := ds.CreateDocument("terms.pdf", []byte("contract body v1"), 2)
	assert.NoError(t, err)
	_, err = ss.RecordDecision(doc.ID, decisionInput(walletA, "accepted", doc.Hash))
	assert.NoError(t, err)

	// a decided document is immutable
	assert.Equal(t, types.ErrConflict, ds.DeleteDocument(doc.ID))
	got, err := ds.GetDocument(doc.ID)
	assert.NoError(t, err)
	assert.Len(t, got.Signatures, 1)
}

func TestListDocumentsDecisionFlags(t *testing.T) {
	selector := newFakeSelector()
	ds := NewDocumentService(selector, nil)
	ss := NewSignatureService(selector)

	accepted, err := ds.CreateDocument("accepted.pdf", []byte("doc one"), 2)
	assert.NoError(t, err)
	rejected, err := ds.CreateDocument("rejected.pdf", []byte("doc two"), 2)
	assert.NoError(t, err)
	untouched, err := ds.CreateDocument("untouched.pdf", []byte("doc three"), 2)
	assert.NoError(t, err)

	_, err = ss.RecordDecision(accepted.ID, decisionInput(walletA, "accepted", accepted.Hash))
	assert.NoError(t, err)
	_, err = ss.RecordDecision(rejected.ID, decisionInput(walletA, "rejected", rejected.Hash))
	assert.NoError(t, err)

	items, err := ds.ListDocuments(walletA)
	assert.NoError(t, err)
	assert.Len(t, items, 3)

	byID := make(map[string]types.DocumentListItem)
	for _, item := range items {
		byID[item.ID] = item
	}
	assert.True(t, byID[accepted.ID].SignedByMe)
	assert.False(t, byID[accepted.ID].RejectedByMe)
	assert.Equal(t, types.StatusPartiallySigned, byID[accepted.ID].Status)

	assert.False(t, byID[rejected.ID].SignedByMe)
	assert.True(t, byID[rejected.ID].RejectedByMe)
	assert.Equal(t, types.StatusUnsigned, byID[rejected.ID].Status)

	assert.False(t, byID[untouched.ID].SignedByMe)
	assert.False(t, byID[untouched.ID].RejectedByMe)

	// flags are per caller
	other, err := ds.ListDocuments(walletB)
	assert.NoError(t, err)
	for _, item := range other {
		assert.False(t, item.SignedByMe)
		assert.False(t, item.RejectedByMe)
	}
}
