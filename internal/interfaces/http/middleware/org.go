package middleware

import (
	"net/http"
	"strings"

	"github.com/marketsync/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrgContextKey is the key used to store org information in gin.Context
const (
	OrgIDKey     = "org_id"
	OrgCodeKey   = "org_code"
	OrgHeaderKey = "X-Org-ID"
)

// OrgInfo holds the extracted org information
type OrgInfo struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"`
}

// OrgExtractor defines the interface for extracting org information
type OrgExtractor interface {
	ExtractOrgID(c *gin.Context) (string, error)
}

// OrgValidator defines the interface for validating org
type OrgValidator interface {
	ValidateOrg(orgID string) (*OrgInfo, error)
}

// OrgMiddlewareConfig holds configuration for org middleware
type OrgMiddlewareConfig struct {
	// HeaderEnabled enables X-Org-ID header extraction
	HeaderEnabled bool
	// JWTEnabled enables JWT claim extraction (requires JWT middleware to run first)
	JWTEnabled bool
	// SubdomainEnabled enables subdomain extraction
	SubdomainEnabled bool
	// BaseDomain is the base domain for subdomain extraction (e.g., "marketsync.io")
	BaseDomain string
	// SkipPaths are paths that don't require org context (e.g., health check)
	SkipPaths []string
	// Required determines if org context is mandatory
	Required bool
	// Validator is an optional validator to check if org exists and is active
	Validator OrgValidator
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultOrgConfig returns default org middleware configuration
func DefaultOrgConfig() OrgMiddlewareConfig {
	return OrgMiddlewareConfig{
		HeaderEnabled:    true,
		JWTEnabled:       true,
		SubdomainEnabled: false,
		BaseDomain:       "",
		SkipPaths:        []string{"/health", "/healthz", "/ready", "/metrics", "/api/v1/health"},
		Required:         true,
		Validator:        nil,
		Logger:           nil,
	}
}

// OrgMiddleware extracts org information from the request
// Extraction order: JWT claims > X-Org-ID header > subdomain
func OrgMiddleware() gin.HandlerFunc {
	return OrgMiddlewareWithConfig(DefaultOrgConfig())
}

// OrgMiddlewareWithConfig returns org middleware with custom configuration
func OrgMiddlewareWithConfig(cfg OrgMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check if path should be skipped
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath || strings.HasPrefix(path, skipPath+"/") {
				c.Next()
				return
			}
		}

		var orgID string
		var extractionMethod string

		// Priority 1: JWT claims (if JWT middleware has already run)
		if cfg.JWTEnabled {
			if jwtOrgID, exists := c.Get("jwt_org_id"); exists {
				if tid, ok := jwtOrgID.(string); ok && tid != "" {
					orgID = tid
					extractionMethod = "jwt"
				}
			}
		}

		// Priority 2: X-Org-ID header
		if orgID == "" && cfg.HeaderEnabled {
			if headerOrgID := c.GetHeader(OrgHeaderKey); headerOrgID != "" {
				orgID = headerOrgID
				extractionMethod = "header"
			}
		}

		// Priority 3: Subdomain extraction
		if orgID == "" && cfg.SubdomainEnabled && cfg.BaseDomain != "" {
			if subdomainOrgID := extractOrgFromSubdomain(c.Request.Host, cfg.BaseDomain); subdomainOrgID != "" {
				orgID = subdomainOrgID
				extractionMethod = "subdomain"
			}
		}

		// Validate org ID format if present
		if orgID != "" {
			if err := validateOrgIDFormat(orgID); err != nil {
				respondUnauthorized(c, "Invalid org ID format")
				return
			}
		}

		// Check if org is required
		if orgID == "" && cfg.Required {
			respondUnauthorized(c, "Org identification required")
			return
		}

		// Optional: Validate org exists and is active
		var orgInfo *OrgInfo
		if orgID != "" && cfg.Validator != nil {
			var err error
			orgInfo, err = cfg.Validator.ValidateOrg(orgID)
			if err != nil {
				log := cfg.Logger
				if log == nil {
					log = logger.FromContext(c.Request.Context())
				}
				log.Warn("Org validation failed",
					zap.String("org_id", orgID),
					zap.Error(err),
				)
				respondUnauthorized(c, "Invalid or inactive org")
				return
			}
		}

		// Set org information in context
		if orgID != "" {
			// Set in gin context for easy access in handlers
			c.Set(OrgIDKey, orgID)
			if orgInfo != nil {
				c.Set(OrgCodeKey, orgInfo.Code)
			}

			// Set in request context for service layer access
			ctx := c.Request.Context()
			log := logger.FromContext(ctx)
			ctx, _ = logger.WithOrgID(ctx, log, orgID)
			c.Request = c.Request.WithContext(ctx)

			// Log extraction method for debugging
			if cfg.Logger != nil {
				cfg.Logger.Debug("Org identified",
					zap.String("org_id", orgID),
					zap.String("method", extractionMethod),
				)
			}
		}

		c.Next()
	}
}

// extractOrgFromSubdomain extracts org code from subdomain
// e.g., "acme.marketsync.io" with baseDomain "marketsync.io" returns "acme"
func extractOrgFromSubdomain(host, baseDomain string) string {
	// Remove port if present
	if idx := strings.Index(host, ":"); idx != -1 {
		host = host[:idx]
	}

	// Check if host ends with base domain
	if !strings.HasSuffix(host, baseDomain) {
		return ""
	}

	// Extract subdomain
	subdomain := strings.TrimSuffix(host, "."+baseDomain)
	if subdomain == host || subdomain == "" || subdomain == "www" {
		return ""
	}

	// Return the first part of subdomain (in case of multi-level subdomains)
	parts := strings.Split(subdomain, ".")
	return parts[0]
}

// validateOrgIDFormat validates that the org ID is a valid UUID
func validateOrgIDFormat(orgID string) error {
	_, err := uuid.Parse(orgID)
	return err
}

// respondUnauthorized sends an unauthorized response
func respondUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}

// GetOrgID retrieves the org ID from gin.Context
func GetOrgID(c *gin.Context) string {
	if orgID, exists := c.Get(OrgIDKey); exists {
		if tid, ok := orgID.(string); ok {
			return tid
		}
	}
	return ""
}

// GetOrgUUID retrieves the org ID as UUID from gin.Context
func GetOrgUUID(c *gin.Context) (uuid.UUID, error) {
	orgID := GetOrgID(c)
	if orgID == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(orgID)
}

// GetOrgCode retrieves the org code from gin.Context
func GetOrgCode(c *gin.Context) string {
	if orgCode, exists := c.Get(OrgCodeKey); exists {
		if code, ok := orgCode.(string); ok {
			return code
		}
	}
	return ""
}

// MustGetOrgID retrieves the org ID from gin.Context or panics if not found
// Use this only in handlers where org is guaranteed to exist
func MustGetOrgID(c *gin.Context) string {
	orgID := GetOrgID(c)
	if orgID == "" {
		panic("org_id not found in context")
	}
	return orgID
}

// MustGetOrgUUID retrieves the org ID as UUID or panics if not found
func MustGetOrgUUID(c *gin.Context) uuid.UUID {
	orgUUID, err := GetOrgUUID(c)
	if err != nil || orgUUID == uuid.Nil {
		panic("valid org_id not found in context")
	}
	return orgUUID
}

// OptionalOrgMiddleware creates middleware that doesn't require org
func OptionalOrgMiddleware() gin.HandlerFunc {
	cfg := DefaultOrgConfig()
	cfg.Required = false
	return OrgMiddlewareWithConfig(cfg)
}
