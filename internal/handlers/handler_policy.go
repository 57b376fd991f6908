package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/velopay/payment_platform_app/internal/core/domain"
	portssvc "github.com/velopay/payment_platform_app/internal/core/ports/services"
	"github.com/velopay/payment_platform_app/internal/dto"
	"github.com/velopay/payment_platform_app/internal/middleware"
)

// policyHandler handles HTTP requests related to policy records.
type policyHandler struct {
	policyService portssvc.PolicySvcFacade
}

// newPolicyHandler creates a new policyHandler.
func newPolicyHandler(ps portssvc.PolicySvcFacade) *policyHandler {
	return &policyHandler{
		policyService: ps,
	}
}

// RegisterPolicyRoutes registers policy administration and resolution
// debugging routes under a tenant. The adminGuard wraps every write.
func RegisterPolicyRoutes(rg *gin.RouterGroup, policyService portssvc.PolicySvcFacade, adminGuard gin.HandlerFunc) {
	h := newPolicyHandler(policyService)

	policies := rg.Group("/policies")
	{
		policies.GET("", h.listPolicies)
		policies.GET("/:policy_id", h.getPolicy)
		policies.POST("/resolve", h.resolvePolicy)

		policies.POST("", adminGuard, h.createPolicy)
		policies.PUT("/:policy_id", adminGuard, h.updatePolicy)
		policies.DELETE("/:policy_id", adminGuard, h.deletePolicy)
	}
}

// createPolicy godoc
// @Summary Create a policy record
// @Description Creates a scoped policy record. The family's resolution cache is invalidated before the response.
// @Tags policies
// @Accept  json
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   policy body dto.CreatePolicyRequest true "Policy record"
// @Success 201 {object} dto.PolicyResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Admin token required"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/policies [post]
func (h *policyHandler) createPolicy(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	var req dto.CreatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreatePolicy", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	record, err := h.policyService.CreatePolicy(c.Request.Context(), tenantID, req, userID)
	if err != nil {
		respondWithError(c, logger, "create policy", err)
		return
	}

	logger.Info("Policy record created",
		slog.String("policy_id", record.PolicyID),
		slog.String("family", string(record.Family)),
	)
	c.JSON(http.StatusCreated, dto.ToPolicyResponse(record))
}

// updatePolicy godoc
// @Summary Update a policy record
// @Description Updates a policy record with an optimistic version check. The family's resolution cache is invalidated before the response.
// @Tags policies
// @Accept  json
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   policy_id path string true "Policy ID"
// @Param   policy body dto.UpdatePolicyRequest true "Fields to change plus expected version"
// @Success 200 {object} dto.PolicyResponse
// @Failure 404 {object} map[string]string "Policy not found"
// @Failure 409 {object} map[string]string "Version conflict"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/policies/{policy_id} [put]
func (h *policyHandler) updatePolicy(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	policyID := c.Param("policy_id")

	var req dto.UpdatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdatePolicy", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	record, err := h.policyService.UpdatePolicy(c.Request.Context(), tenantID, policyID, req, userID)
	if err != nil {
		respondWithError(c, logger, "update policy", err)
		return
	}

	logger.Info("Policy record updated", slog.String("policy_id", policyID), slog.Int64("version", record.Version))
	c.JSON(http.StatusOK, dto.ToPolicyResponse(record))
}

// deletePolicy godoc
// @Summary Delete a policy record
// @Description Removes a policy record. The family's resolution cache is invalidated before the response.
// @Tags policies
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   policy_id path string true "Policy ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "Policy not found"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/policies/{policy_id} [delete]
func (h *policyHandler) deletePolicy(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	policyID := c.Param("policy_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.policyService.DeletePolicy(c.Request.Context(), tenantID, policyID, userID); err != nil {
		respondWithError(c, logger, "delete policy", err)
		return
	}

	logger.Info("Policy record deleted", slog.String("policy_id", policyID))
	c.Status(http.StatusNoContent)
}

// getPolicy godoc
// @Summary Get a policy record
// @Tags policies
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   policy_id path string true "Policy ID"
// @Success 200 {object} dto.PolicyResponse
// @Failure 404 {object} map[string]string "Policy not found"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/policies/{policy_id} [get]
func (h *policyHandler) getPolicy(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	policyID := c.Param("policy_id")

	record, err := h.policyService.GetPolicyByID(c.Request.Context(), tenantID, policyID)
	if err != nil {
		respondWithError(c, logger, "get policy", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPolicyResponse(record))
}

// listPolicies godoc
// @Summary List a tenant's policy records for a family
// @Tags policies
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   family query string true "Policy family" Enums(FRAUD_API_TOGGLE, CLEARING_ROUTE, GATEWAY_AUTH)
// @Success 200 {object} dto.ListPoliciesResponse
// @Failure 400 {object} map[string]string "Unknown family"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/policies [get]
func (h *policyHandler) listPolicies(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	family := domain.PolicyFamily(c.Query("family"))
	if !family.IsValid() {
		logger.Warn("Unknown policy family requested", slog.String("family", string(family)))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown policy family"})
		return
	}

	records, err := h.policyService.ListPolicies(c.Request.Context(), family, tenantID)
	if err != nil {
		respondWithError(c, logger, "list policies", err)
		return
	}

	c.JSON(http.StatusOK, dto.ListPoliciesResponse{Policies: dto.ToPolicyResponses(records)})
}

// resolvePolicy godoc
// @Summary Resolve the winning policy for a context
// @Description Runs the resolution engine for an arbitrary family and context. Operator debugging aid.
// @Tags policies
// @Accept  json
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   context body dto.ResolvePolicyRequest true "Resolution context"
// @Success 200 {object} dto.ResolvePolicyResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Security BearerAuth
// @Router /tenants/{tenant_id}/policies/resolve [post]
func (h *policyHandler) resolvePolicy(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	var req dto.ResolvePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ResolvePolicy", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	rc := domain.ResolutionContext{
		TenantID:            tenantID,
		PaymentType:         req.PaymentType,
		LocalInstrumentCode: req.LocalInstrumentCode,
		ClearingSystemCode:  req.ClearingSystemCode,
	}

	record, err := h.policyService.ResolvePolicy(c.Request.Context(), req.Family, rc)
	if err != nil {
		respondWithError(c, logger, "resolve policy", err)
		return
	}

	resp := dto.ResolvePolicyResponse{Resolved: record != nil}
	if record != nil {
		pr := dto.ToPolicyResponse(record)
		resp.Policy = &pr
	}
	c.JSON(http.StatusOK, resp)
}
