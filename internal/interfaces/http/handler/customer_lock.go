package handler

import (
	"context"
	"time"

	appcl "github.com/erp/invoicelock/internal/application/customerlock"
	"github.com/erp/invoicelock/internal/domain/customerlock"
	"github.com/erp/invoicelock/internal/interfaces/http/dto"
	"github.com/erp/invoicelock/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// StatusChecker answers lock status queries
type StatusChecker interface {
	Check(ctx context.Context, customer string) (*appcl.StatusResult, error)
	ListLocked(ctx context.Context) ([]appcl.StatusResult, error)
}

// OverdueScanner runs the overdue invoice scan
type OverdueScanner interface {
	Run(ctx context.Context, today time.Time) (*appcl.ScanReport, error)
}

// CustomerUnlocker lifts customer locks
type CustomerUnlocker interface {
	Unlock(ctx context.Context, customer string, actor customerlock.Actor) (*appcl.UnlockResult, error)
}

// CustomerLockHandler serves the customer lock API
type CustomerLockHandler struct {
	BaseHandler
	status   StatusChecker
	scanner  OverdueScanner
	unlocker CustomerUnlocker
	now      func() time.Time
}

// NewCustomerLockHandler creates a CustomerLockHandler
func NewCustomerLockHandler(status StatusChecker, scanner OverdueScanner, unlocker CustomerUnlocker) *CustomerLockHandler {
	return &CustomerLockHandler{
		status:   status,
		scanner:  scanner,
		unlocker: unlocker,
		now:      time.Now,
	}
}

// RegisterRoutes mounts the handler under /customer-lock
func (h *CustomerLockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/customer-lock")
	g.POST("/status", h.QueryStatus)
	g.GET("/status/:customer", h.GetStatus)
	g.GET("/locked", h.ListLocked)
	g.POST("/scan", h.RunScan)
	g.POST("/:customer/unlock", h.Unlock)
}

// QueryStatus answers the status query used by sales forms.
// An empty customer is not an error; it reports unlocked.
//
// POST /api/v1/customer-lock/status
func (h *CustomerLockHandler) QueryStatus(c *gin.Context) {
	var req appcl.StatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.status.Check(c.Request.Context(), req.Customer)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GetStatus returns the lock status of one customer
//
// GET /api/v1/customer-lock/status/:customer
func (h *CustomerLockHandler) GetStatus(c *gin.Context) {
	var uri dto.CustomerURI
	if !h.BindURI(c, &uri) {
		return
	}

	result, err := h.status.Check(c.Request.Context(), uri.Customer)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ListLocked returns every locked customer
//
// GET /api/v1/customer-lock/locked
func (h *CustomerLockHandler) ListLocked(c *gin.Context) {
	results, err := h.status.ListLocked(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if results == nil {
		results = []appcl.StatusResult{}
	}
	h.Success(c, results)
}

// RunScan runs the overdue scan now. A scan already running elsewhere
// answers 409.
//
// POST /api/v1/customer-lock/scan
func (h *CustomerLockHandler) RunScan(c *gin.Context) {
	report, err := h.scanner.Run(c.Request.Context(), h.now())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// Unlock lifts the lock of a customer on behalf of the acting user
//
// POST /api/v1/customer-lock/:customer/unlock
func (h *CustomerLockHandler) Unlock(c *gin.Context) {
	var uri dto.CustomerURI
	if !h.BindURI(c, &uri) {
		return
	}

	result, err := h.unlocker.Unlock(c.Request.Context(), uri.Customer, middleware.GetActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
