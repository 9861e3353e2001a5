package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"

	"github.com/saif-raza-001/pharmastream/engine"
	"github.com/saif-raza-001/pharmastream/models"
	"github.com/saif-raza-001/pharmastream/reports"
)

var tracer = otel.Tracer("pharmastream/http")

func registerRoutes(router *gin.Engine, eng *engine.Engine) {
	h := &handlers{eng: eng}

	router.POST("/invoices", h.createInvoice)
	router.GET("/invoices/:id", h.getInvoice)
	router.DELETE("/invoices/:id", h.voidInvoice)
	router.POST("/invoices/:id/payments", h.receivePayment)

	router.POST("/purchases", h.createPurchase)
	router.GET("/purchases/:id", h.getPurchase)
	router.DELETE("/purchases/:id", h.voidPurchase)

	router.POST("/receipts", h.createReceipt)
	router.POST("/payments", h.createPayment)

	router.GET("/accounts/:id/ledger", h.getLedger)
	router.GET("/accounts/:id/ledger/export", h.exportLedger)

	router.GET("/products/:id/batches", h.listBatches)
	router.POST("/counters/:name/next", h.nextNumber)
}

type handlers struct {
	eng *engine.Engine
}

func (h *handlers) createInvoice(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "CreateInvoice")
	defer span.End()

	var input models.NewSalesInvoice
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	invoice, err := h.eng.CreateInvoice(ctx, &input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

func (h *handlers) getInvoice(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	invoice, err := h.eng.GetInvoice(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (h *handlers) voidInvoice(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "VoidInvoice")
	defer span.End()

	id, ok := pathID(c)
	if !ok {
		return
	}
	invoice, err := h.eng.VoidInvoice(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (h *handlers) receivePayment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var input models.NewPaymentReceipt
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	due, err := h.eng.ReceivePayment(c.Request.Context(), id, &input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice_id": id, "due_amount": due})
}

func (h *handlers) createPurchase(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "CreatePurchase")
	defer span.End()

	var input models.NewPurchase
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	purchase, err := h.eng.CreatePurchase(ctx, &input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, purchase)
}

func (h *handlers) getPurchase(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	purchase, err := h.eng.GetPurchase(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchase)
}

func (h *handlers) voidPurchase(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "VoidPurchase")
	defer span.End()

	id, ok := pathID(c)
	if !ok {
		return
	}
	purchase, err := h.eng.VoidPurchase(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchase)
}

func (h *handlers) createReceipt(c *gin.Context) {
	var input models.NewVoucher
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entry, err := h.eng.CreateReceipt(c.Request.Context(), &input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *handlers) createPayment(c *gin.Context) {
	var input models.NewVoucher
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entry, err := h.eng.CreatePayment(c.Request.Context(), &input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *handlers) getLedger(c *gin.Context) {
	statement, ok := h.loadStatement(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, statement)
}

func (h *handlers) exportLedger(c *gin.Context) {
	statement, ok := h.loadStatement(c)
	if !ok {
		return
	}
	filename := fmt.Sprintf("ledger-%d-%s.xlsx", statement.AccountID, time.Now().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := reports.WriteStatementXLSX(statement, c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *handlers) loadStatement(c *gin.Context) (*models.Statement, bool) {
	id, ok := pathID(c)
	if !ok {
		return nil, false
	}
	from, ok := dateQuery(c, "from")
	if !ok {
		return nil, false
	}
	to, ok := dateQuery(c, "to")
	if !ok {
		return nil, false
	}
	// Entry dates carry wall-clock time; a bare "to" date means that whole day.
	if to != nil {
		eod := endOfDay(*to)
		to = &eod
	}
	statement, err := h.eng.GetLedger(c.Request.Context(), id, from, to)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return statement, true
}

func (h *handlers) listBatches(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	batches, err := h.eng.ListAvailableBatches(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, batches)
}

func (h *handlers) nextNumber(c *gin.Context) {
	name := c.Param("name")
	number, err := h.eng.NextNumber(c.Request.Context(), name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "value": number})
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func endOfDay(t time.Time) time.Time {
	return t.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func dateQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " date, want YYYY-MM-DD"})
		return nil, false
	}
	return &t, true
}

// writeError maps engine errors onto HTTP statuses. Validation failures are
// 400, missing documents 404, state conflicts 409, contention 409 so clients
// retry, and an unissued sequence 503.
func writeError(c *gin.Context, err error) {
	var (
		stockErr  *engine.InsufficientStockError
		lineErr   *engine.InvalidLineItemError
		amountErr *engine.InvalidAmountError
		entryErr  *engine.InvalidEntryError
		acctErr   *engine.AccountTypeMismatchError
	)
	switch {
	case errors.Is(err, engine.ErrAccountNotFound),
		errors.Is(err, engine.ErrInvoiceNotFound),
		errors.Is(err, engine.ErrPurchaseNotFound),
		errors.Is(err, engine.ErrBatchNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrAlreadyPaid),
		errors.Is(err, engine.ErrAlreadyVoid),
		errors.Is(err, engine.ErrConcurrencyConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":     stockErr.Error(),
			"batch_id":  stockErr.BatchID,
			"requested": stockErr.Requested,
			"available": stockErr.Available,
		})
	case errors.As(err, &lineErr), errors.As(err, &amountErr),
		errors.As(err, &entryErr), errors.As(err, &acctErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrSequenceUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
