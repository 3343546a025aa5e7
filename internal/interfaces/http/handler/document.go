package handler

import (
	"context"
	"errors"

	appcl "github.com/erp/invoicelock/internal/application/customerlock"
	"github.com/erp/invoicelock/internal/domain/customerlock"
	"github.com/erp/invoicelock/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// DocumentValidator checks a document against its customer's lock before save
type DocumentValidator interface {
	Validate(ctx context.Context, ref appcl.DocumentRef) (*appcl.ValidateDocumentResult, error)
}

// DocumentHandler serves save-time validation of sales documents
type DocumentHandler struct {
	BaseHandler
	validator DocumentValidator
	recorder  appcl.Recorder
}

// NewDocumentHandler creates a DocumentHandler. recorder may be nil.
func NewDocumentHandler(validator DocumentValidator, recorder appcl.Recorder) *DocumentHandler {
	if recorder == nil {
		recorder = appcl.NopRecorder{}
	}
	return &DocumentHandler{validator: validator, recorder: recorder}
}

// RegisterRoutes mounts the handler under /documents
func (h *DocumentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.Group("/documents").POST("/validate", h.Validate)
}

// Validate answers whether the document may be saved. A blocked save
// answers 422 with the message shown to the user.
//
// POST /api/v1/documents/validate
func (h *DocumentHandler) Validate(c *gin.Context) {
	var req appcl.ValidateDocumentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.validator.Validate(c.Request.Context(), req.ToDocumentRef())
	if err != nil {
		if errors.Is(err, shared.ErrCustomerLocked) {
			if doc, perr := customerlock.ParseDocumentType(req.DocType); perr == nil {
				h.recorder.ObserveSaveBlocked(doc)
			}
		}
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
