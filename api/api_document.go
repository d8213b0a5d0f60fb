package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apiutil "github.com/walletsign/go-walletsign-server/api/util"
	"github.com/walletsign/go-walletsign-server/metrics"
	"github.com/walletsign/go-walletsign-server/services"
	"github.com/walletsign/go-walletsign-server/types"
	"github.com/walletsign/go-walletsign-server/util"
)

type DocumentApi struct {
	documentService  *services.DocumentService
	signatureService *services.SignatureService
	validate         *validator.Validate
}

func NewDocumentApi(documentService *services.DocumentService, signatureService *services.SignatureService) *DocumentApi {
	return &DocumentApi{
		documentService:  documentService,
		signatureService: signatureService,
		validate:         validator.New(),
	}
}

// Record a signing decision
// @Summary Record a signing decision
// @Description Appends an accept or reject decision of the session wallet to the document
// @Tags Documents
// @Param id path string true "document id"
// @Param request body types.InputDecision true "decision"
// @Success 200 {object} types.OutputDecision
// @Failure 400 {object} api.ApiError "invalid input or hash mismatch"
// @Failure 401 {object} api.ApiError "session wallet does not match the decision wallet"
// @Failure 404 {object} api.ApiError "document not found"
// @Failure 409 {object} api.ApiError "document completed or wallet already decided"
// @Failure 429 {object} api.ApiError "rate limit exceeded"
// @Failure 500 {object} api.ApiError "Internal server error"
// @Accept json
// @Produce json
// @Router /documents/{id}/decision [post]
func (da *DocumentApi) RecordDecision(c *gin.Context) {
	docID := c.Param("id")
	if docID == "" {
		ApiErrorf(c, http.StatusBadRequest, "document id is required")
		return
	}
	var input types.InputDecision
	if err := c.ShouldBindJSON(&input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, "invalid input")
		return
	}
	if vErr := da.validate.Struct(input); vErr != nil {
		msg := ValidatorErrorToUser(vErr.(validator.ValidationErrors))
		ApiErrorf(c, http.StatusBadRequest, msg)
		return
	}

	// decisions are made with the wallet the session was issued for
	sessionWallet := c.GetString("wallet")
	if util.NormalizeWalletAddress(input.WalletAddress) != sessionWallet {
		ApiErrorf(c, http.StatusUnauthorized, "decision wallet does not match the session")
		return
	}

	if util.IsNilOrEmpty(input.IP) {
		if ip, ipErr := apiutil.GetIPFromContext(c); ipErr == nil {
			input.IP = ip
		}
	}
	if util.IsNilOrEmpty(input.UserAgent) {
		if ua := c.GetHeader("User-Agent"); ua != "" {
			input.UserAgent = &ua
		}
	}

	start := time.Now()
	doc, err := da.signatureService.RecordDecision(docID, &input)
	if err != nil {
		switch err {
		case types.ErrBadRequest:
			ApiErrorf(c, http.StatusBadRequest, "decision must be accepted or rejected")
		case types.ErrHashMismatch:
			ApiErrorf(c, http.StatusBadRequest, "document hash does not match")
		case types.ErrNotFound:
			ApiErrorf(c, http.StatusNotFound, "document not found")
		case types.ErrAlreadyCompleted:
			ApiErrorf(c, http.StatusConflict, "document is already fully signed")
		case types.ErrAlreadyDecided:
			ApiErrorf(c, http.StatusConflict, "wallet has already decided on this document")
		default:
			ApiErrorf(c, http.StatusInternalServerError, "failed to record decision")
		}
		return
	}
	metrics.DecisionProcessingLatency.Observe(float64(time.Since(start).Milliseconds()))
	metrics.DecisionsRecordedMetricsCount.Inc()
	if doc.Status == types.StatusSigned {
		metrics.DocumentsCompletedMetricsCount.Inc()
	}

	c.JSON(http.StatusOK, types.OutputDecision{
		Ok:       true,
		DocID:    doc.ID,
		Status:   doc.Status,
		Accepted: doc.AcceptedSignatures,
		Required: doc.RequiredSignatures,
	})
}

// Upload a document
// @Summary Upload a document
// @Description Stores the document content and registers it for signing
// @Tags Documents
// @Param file formData file true "document content"
// @Param requiredSignatures formData int false "number of accepts to complete, default 1"
// @Success 201 {object} types.OutputDocumentCreated
// @Failure 400 {object} api.ApiError "invalid input"
// @Failure 409 {object} api.ApiError "identical content already registered"
// @Failure 429 {object} api.ApiError "rate limit exceeded"
// @Failure 500 {object} api.ApiError "Internal server error"
// @Accept multipart/form-data
// @Produce json
// @Router /documents [post]
func (da *DocumentApi) UploadDocument(c *gin.Context) {
	fileHeader, fErr := c.FormFile("file")
	if fErr != nil {
		ApiErrorf(c, http.StatusBadRequest, "file is required")
		return
	}
	required := 1
	if rs := c.PostForm("requiredSignatures"); rs != "" {
		parsed, pErr := strconv.Atoi(rs)
		if pErr != nil || parsed <= 0 {
			ApiErrorf(c, http.StatusBadRequest, "requiredSignatures must be a positive number")
			return
		}
		required = parsed
	}

	file, oErr := fileHeader.Open()
	if oErr != nil {
		ApiErrorf(c, http.StatusInternalServerError, "failed to read file")
		return
	}
	defer file.Close()
	content, rErr := io.ReadAll(file)
	if rErr != nil {
		ApiErrorf(c, http.StatusInternalServerError, "failed to read file")
		return
	}

	doc, err := da.documentService.CreateDocument(fileHeader.Filename, content, required)
	if err != nil {
		switch err {
		case types.ErrBadRequest:
			ApiErrorf(c, http.StatusBadRequest, "file must not be empty")
		case types.ErrConflict:
			ApiErrorf(c, http.StatusConflict, "identical content is already registered")
		default:
			ApiErrorf(c, http.StatusInternalServerError, "failed to store document")
		}
		return
	}
	c.JSON(http.StatusCreated, types.OutputDocumentCreated{Ok: true, ID: doc.ID, Hash: doc.Hash})
}

// Delete a document
// @Summary Delete a document
// @Description Removes a document that has no recorded decisions yet
// @Tags Documents
// @Param id path string true "document id"
// @Success 200 {object} types.OutputOk
// @Failure 404 {object} api.ApiError "document not found"
// @Failure 409 {object} api.ApiError "document already has decisions"
// @Failure 429 {object} api.ApiError "rate limit exceeded"
// @Failure 500 {object} api.ApiError "Internal server error"
// @Produce json
// @Router /documents/{id} [delete]
func (da *DocumentApi) DeleteDocument(c *gin.Context) {
	err := da.documentService.DeleteDocument(c.Param("id"))
	if err != nil {
		switch err {
		case types.ErrNotFound:
			ApiErrorf(c, http.StatusNotFound, "document not found")
		case types.ErrConflict:
			ApiErrorf(c, http.StatusConflict, "document already has recorded decisions")
		default:
			ApiErrorf(c, http.StatusInternalServerError, "failed to delete document")
		}
		return
	}
	c.JSON(http.StatusOK, types.OutputOk{Ok: true})
}

// List documents
// @Summary List documents
// @Description Metadata-only listing with per-caller decision flags
// @Tags Documents
// @Success 200 {object} types.OutputDocumentList
// @Failure 429 {object} api.ApiError "rate limit exceeded"
// @Failure 500 {object} api.ApiError "Internal server error"
// @Produce json
// @Router /documents [get]
func (da *DocumentApi) ListDocuments(c *gin.Context) {
	wallet := c.GetString("wallet")
	items, err := da.documentService.ListDocuments(wallet)
	if err != nil {
		ApiErrorf(c, http.StatusInternalServerError, "failed to list documents")
		return
	}
	c.JSON(http.StatusOK, types.OutputDocumentList{Ok: true, Docs: items})
}

// Document hash
// @Summary Document hash
// @Description Returns the content hash a client should countersign
// @Tags Documents
// @Param id path string true "document id"
// @Success 200 {object} types.OutputDocumentMeta
// @Failure 404 {object} api.ApiError "document not found"
// @Failure 429 {object} api.ApiError "rate limit exceeded"
// @Failure 500 {object} api.ApiError "Internal server error"
// @Produce json
// @Router /documents/{id}/meta [get]
func (da *DocumentApi) DocumentMeta(c *gin.Context) {
	doc, err := da.documentService.GetDocument(c.Param("id"))
	if err != nil {
		if err == types.ErrNotFound {
			ApiErrorf(c, http.StatusNotFound, "document not found")
		} else {
			ApiErrorf(c, http.StatusInternalServerError, "failed to load document")
		}
		return
	}
	c.JSON(http.StatusOK, types.OutputDocumentMeta{Ok: true, Hash: doc.Hash})
}

// View a document
// @Summary View a document
// @Description Streams the document content for inline display
// @Tags Documents
// @Param id path string true "document id"
// @Success 200 {file} binary
// @Failure 404 {object} api.ApiError "document not found"
// @Failure 429 {object} api.ApiError "rate limit exceeded"
// @Failure 500 {object} api.ApiError "Internal server error"
// @Router /documents/{id}/view [get]
func (da *DocumentApi) ViewDocument(c *gin.Context) {
	da.serveContent(c, "inline")
}

// Download a document
// @Summary Download a document
// @Description Streams the document content as an attachment
// @Tags Documents
// @Param id path string true "document id"
// @Success 200 {file} binary
// @Failure 404 {object} api.ApiError "document not found"
// @Failure 429 {object} api.ApiError "rate limit exceeded"
// @Failure 500 {object} api.ApiError "Internal server error"
// @Router /documents/{id}/download [get]
func (da *DocumentApi) DownloadDocument(c *gin.Context) {
	da.serveContent(c, "attachment")
}

func (da *DocumentApi) serveContent(c *gin.Context, disposition string) {
	doc, content, err := da.documentService.GetContent(c.Param("id"))
	if err != nil {
		if err == types.ErrNotFound {
			ApiErrorf(c, http.StatusNotFound, "document not found")
		} else {
			ApiErrorf(c, http.StatusInternalServerError, "failed to load document")
		}
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, doc.Name))
	c.Data(http.StatusOK, "application/octet-stream", content)
}
