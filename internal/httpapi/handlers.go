package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"call-analytics/internal/auth"
	"call-analytics/internal/calls"
	"call-analytics/internal/tenant"
	"call-analytics/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Calls    *calls.Service
	Tenants  *tenant.Resolver
	Sessions *auth.SessionManager
}

// --- Health ---

func (h Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "timestamp": time.Now().UTC().Format(time.RFC3339)})
}

// --- Sessions ---

// CreateSession exchanges a valid API key for a short-lived session token.
// The dashboard authenticates once with its key, then polls with the token.
func (h Handlers) CreateSession(c *gin.Context) {
	accountID, status, reason := auth.ResolveKey(c, h.Tenants)
	if reason != "" {
		c.AbortWithStatusJSON(status, gin.H{"ok": false, "error": reason})
		return
	}

	token, err := h.Sessions.Issue(time.Now(), accountID)
	if err != nil {
		logger.FromGin(c).Error("session issuance failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "Failed to create session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"token":     token,
		"expiresIn": int(h.Sessions.TTL().Seconds()),
	})
}

// --- Calls ---

// saveCallRequest is the explicit input schema of a call submission.
// Every field is optional; missing text fields coerce to empty strings and
// direction defaults to inbound. timestamp is deliberately untyped: numbers,
// date strings and null are all legal and owned by the normalizer.
type saveCallRequest struct {
	Timestamp   any    `json:"timestamp"`
	ContactName string `json:"contactName"`
	Phone       string `json:"phone"`
	Direction   string `json:"direction"`
	Status      string `json:"status"`
	Summary     string `json:"summary"`
	ExternalID  string `json:"externalId"`
}

// SaveCall ingests one call record for the authenticated tenant.
func (h Handlers) SaveCall(c *gin.Context) {
	accountID, err := auth.AccountID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "Unauthorized"})
		return
	}

	var req saveCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Invalid JSON body"})
		return
	}

	rec, err := h.Calls.Ingest(c.Request.Context(), accountID, calls.IngestRequest{
		Timestamp:   req.Timestamp,
		ContactName: req.ContactName,
		Phone:       req.Phone,
		Direction:   req.Direction,
		Status:      req.Status,
		Summary:     req.Summary,
		ExternalID:  req.ExternalID,
	})
	if err != nil {
		logger.FromGin(c).Error("call upsert failed", "err", err, "account_id", accountID)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "Failed to save call record"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"message":    "Call record saved successfully",
		"externalId": rec.ExternalID,
		"record":     rec,
	})
}

// callView is the wire shape of a listed record.
type callView struct {
	Timestamp   time.Time `json:"timestamp"`
	ContactName string    `json:"contactName"`
	Phone       string    `json:"phone"`
	Direction   string    `json:"direction"`
	Status      string    `json:"status"`
	Summary     string    `json:"summary"`
	ExternalID  string    `json:"externalId"`
}

// ListCalls returns the tenant's recent calls plus presentation aggregates.
func (h Handlers) ListCalls(c *gin.Context) {
	accountID, err := auth.AccountID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "Unauthorized"})
		return
	}

	// Unparseable limits fall through as 0 and take the default.
	limit, _ := strconv.Atoi(c.Query("limit"))

	records, err := h.Calls.List(c.Request.Context(), accountID, limit)
	if err != nil {
		logger.FromGin(c).Error("call list failed", "err", err, "account_id", accountID)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "Failed to fetch calls"})
		return
	}

	data := make([]callView, 0, len(records))
	for _, r := range records {
		data = append(data, callView{
			Timestamp:   r.OccurredAt,
			ContactName: r.ContactName,
			Phone:       r.Phone,
			Direction:   r.Direction,
			Status:      r.Status,
			Summary:     r.Summary,
			ExternalID:  r.ExternalID,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"summary": calls.Summarize(records),
		"data":    data,
	})
}
