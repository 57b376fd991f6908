package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/velopay/payment_platform_app/internal/core/ports/services"
	"github.com/velopay/payment_platform_app/internal/dto"
	"github.com/velopay/payment_platform_app/internal/middleware"
)

// paymentHandler handles HTTP requests related to payments.
type paymentHandler struct {
	paymentService portssvc.PaymentSvcFacade
}

// newPaymentHandler creates a new paymentHandler.
func newPaymentHandler(ps portssvc.PaymentSvcFacade) *paymentHandler {
	return &paymentHandler{
		paymentService: ps,
	}
}

// RegisterPaymentRoutes registers payment lifecycle routes under a tenant.
func RegisterPaymentRoutes(rg *gin.RouterGroup, paymentService portssvc.PaymentSvcFacade) {
	h := newPaymentHandler(paymentService)

	payments := rg.Group("/payments")
	{
		payments.POST("", h.initiatePayment)
		payments.GET("", h.listPayments)
		payments.GET("/:payment_id", h.getPayment)
		payments.GET("/:payment_id/history", h.getPaymentHistory)
		payments.POST("/:payment_id/validate", h.validatePayment)
		payments.POST("/:payment_id/submit", h.submitPayment)
		payments.POST("/:payment_id/cleared", h.markPaymentCleared)
		payments.POST("/:payment_id/complete", h.completePayment)
		payments.POST("/:payment_id/fail", h.failPayment)
		payments.PUT("/:payment_id/status", h.updatePaymentStatus)
	}
}

// initiatePayment godoc
// @Summary Initiate a payment
// @Description Creates a new payment in INITIATED state. Reusing an idempotency key returns the original payment with 409.
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   payment body dto.InitiatePaymentRequest true "Payment details"
// @Success 201 {object} dto.PaymentResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} dto.PaymentResponse "Idempotency key already used"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/payments [post]
func (h *paymentHandler) initiatePayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	var req dto.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for InitiatePayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("tenant_id", tenantID), slog.String("user_id", userID))

	payment, err := h.paymentService.InitiatePayment(c.Request.Context(), tenantID, req, userID)
	if err != nil {
		if payment != nil && isDuplicate(err) {
			// The key already belongs to this payment; return it unchanged.
			logger.Info("Idempotency key already used", slog.String("payment_id", payment.PaymentID))
			c.JSON(http.StatusConflict, dto.ToPaymentResponse(payment))
			return
		}
		respondWithError(c, logger, "initiate payment", err)
		return
	}

	logger.Info("Payment initiated", slog.String("payment_id", payment.PaymentID))
	c.JSON(http.StatusCreated, dto.ToPaymentResponse(payment))
}

// getPayment godoc
// @Summary Get a payment
// @Description Retrieves a payment with its full status history.
// @Tags payments
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   payment_id path string true "Payment ID"
// @Success 200 {object} dto.PaymentResponse
// @Failure 404 {object} map[string]string "Payment not found"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/payments/{payment_id} [get]
func (h *paymentHandler) getPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	paymentID := c.Param("payment_id")

	payment, err := h.paymentService.GetPaymentByID(c.Request.Context(), tenantID, paymentID)
	if err != nil {
		respondWithError(c, logger, "get payment", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

// getPaymentHistory godoc
// @Summary Get a payment's status history
// @Description Retrieves the immutable status change trail of a payment, oldest first.
// @Tags payments
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   payment_id path string true "Payment ID"
// @Success 200 {array} dto.StatusChangeResponse
// @Failure 404 {object} map[string]string "Payment not found"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/payments/{payment_id}/history [get]
func (h *paymentHandler) getPaymentHistory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	paymentID := c.Param("payment_id")

	payment, err := h.paymentService.GetPaymentByID(c.Request.Context(), tenantID, paymentID)
	if err != nil {
		respondWithError(c, logger, "get payment history", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToStatusChangeResponses(payment.StatusHistory))
}

// listPayments godoc
// @Summary List a tenant's payments
// @Description Retrieves a paginated list of payments, newest first.
// @Tags payments
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   limit query int false "Page size (default 20, max 100)"
// @Param   nextToken query string false "Pagination token from a previous response"
// @Success 200 {object} dto.ListPaymentsResponse
// @Failure 400 {object} map[string]string "Invalid pagination parameters"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/payments [get]
func (h *paymentHandler) listPayments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	var params dto.ListPaymentsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListPayments", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pagination parameters: " + err.Error()})
		return
	}

	resp, err := h.paymentService.ListPayments(c.Request.Context(), tenantID, params)
	if err != nil {
		respondWithError(c, logger, "list payments", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// validatePayment godoc
// @Summary Apply a validation outcome
// @Description Records the validation result for an INITIATED payment. A failing result moves the payment to FAILED.
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   payment_id path string true "Payment ID"
// @Param   result body dto.ValidatePaymentRequest true "Validation outcome"
// @Success 200 {object} dto.PaymentResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Payment not found"
// @Failure 409 {object} map[string]string "Illegal transition"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/payments/{payment_id}/validate [post]
func (h *paymentHandler) validatePayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	paymentID := c.Param("payment_id")

	var req dto.ValidatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ValidatePayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result := toValidationResult(req)
	payment, err := h.paymentService.ValidatePayment(c.Request.Context(), tenantID, paymentID, result, userID)
	if err != nil {
		respondWithError(c, logger, "validate payment", err)
		return
	}

	logger.Info("Payment validation applied", slog.String("payment_id", paymentID), slog.String("status", string(payment.Status)))
	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

// submitPayment godoc
// @Summary Submit a payment to clearing
// @Description Resolves the clearing route for the payment's context and submits a VALIDATED payment.
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   payment_id path string true "Payment ID"
// @Param   submission body dto.SubmitPaymentRequest true "Submission details"
// @Success 200 {object} dto.PaymentResponse
// @Failure 404 {object} map[string]string "Payment not found"
// @Failure 409 {object} map[string]string "Illegal transition"
// @Failure 422 {object} map[string]string "No clearing route resolves for the context"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/payments/{payment_id}/submit [post]
func (h *paymentHandler) submitPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	paymentID := c.Param("payment_id")

	var req dto.SubmitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SubmitPayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payment, err := h.paymentService.SubmitPaymentToClearing(c.Request.Context(), tenantID, paymentID, req.LocalInstrumentCode, userID)
	if err != nil {
		respondWithError(c, logger, "submit payment to clearing", err)
		return
	}

	logger.Info("Payment submitted to clearing",
		slog.String("payment_id", paymentID),
		slog.String("clearing_system", payment.ClearingSystemCode),
	)
	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

// markPaymentCleared godoc
// @Summary Record clearing confirmation
// @Description Moves a CLEARING payment to CLEARED with the confirmation reference.
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   payment_id path string true "Payment ID"
// @Param   confirmation body dto.MarkClearedRequest true "Clearing confirmation"
// @Success 200 {object} dto.PaymentResponse
// @Failure 404 {object} map[string]string "Payment not found"
// @Failure 409 {object} map[string]string "Illegal transition"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/payments/{payment_id}/cleared [post]
func (h *paymentHandler) markPaymentCleared(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	paymentID := c.Param("payment_id")

	var req dto.MarkClearedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for MarkPaymentCleared", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payment, err := h.paymentService.MarkPaymentCleared(c.Request.Context(), tenantID, paymentID, req.ConfirmationReference, userID)
	if err != nil {
		respondWithError(c, logger, "mark payment cleared", err)
		return
	}

	logger.Info("Payment cleared", slog.String("payment_id", paymentID))
	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

// completePayment godoc
// @Summary Complete a payment
// @Description Moves a CLEARED payment to its terminal COMPLETED state.
// @Tags payments
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   payment_id path string true "Payment ID"
// @Success 200 {object} dto.PaymentResponse
// @Failure 404 {object} map[string]string "Payment not found"
// @Failure 409 {object} map[string]string "Illegal transition"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/payments/{payment_id}/complete [post]
func (h *paymentHandler) completePayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	paymentID := c.Param("payment_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payment, err := h.paymentService.CompletePayment(c.Request.Context(), tenantID, paymentID, userID)
	if err != nil {
		respondWithError(c, logger, "complete payment", err)
		return
	}

	logger.Info("Payment completed", slog.String("payment_id", paymentID))
	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

// failPayment godoc
// @Summary Fail a payment
// @Description Moves any non-terminal payment to FAILED with a mandatory reason.
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   payment_id path string true "Payment ID"
// @Param   failure body dto.FailPaymentRequest true "Failure reason"
// @Success 200 {object} dto.PaymentResponse
// @Failure 400 {object} map[string]string "Missing reason"
// @Failure 404 {object} map[string]string "Payment not found"
// @Failure 409 {object} map[string]string "Payment already terminal"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/payments/{payment_id}/fail [post]
func (h *paymentHandler) failPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	paymentID := c.Param("payment_id")

	var req dto.FailPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for FailPayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payment, err := h.paymentService.FailPayment(c.Request.Context(), tenantID, paymentID, req.Reason, userID)
	if err != nil {
		respondWithError(c, logger, "fail payment", err)
		return
	}

	logger.Info("Payment failed", slog.String("payment_id", paymentID), slog.String("reason", req.Reason))
	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

// updatePaymentStatus godoc
// @Summary Administratively correct a payment's status
// @Description Sets the payment status outside the normal transition table. The correction is recorded in the status history.
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   payment_id path string true "Payment ID"
// @Param   status body dto.UpdatePaymentStatusRequest true "Target status and reason"
// @Success 200 {object} dto.PaymentResponse
// @Failure 400 {object} map[string]string "Invalid status or missing reason"
// @Failure 404 {object} map[string]string "Payment not found"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/payments/{payment_id}/status [put]
func (h *paymentHandler) updatePaymentStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	paymentID := c.Param("payment_id")

	var req dto.UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdatePaymentStatus", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payment, err := h.paymentService.UpdatePaymentStatus(c.Request.Context(), tenantID, paymentID, req.Status, req.Reason, userID)
	if err != nil {
		respondWithError(c, logger, "update payment status", err)
		return
	}

	logger.Info("Payment status corrected",
		slog.String("payment_id", paymentID),
		slog.String("status", string(payment.Status)),
	)
	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}
