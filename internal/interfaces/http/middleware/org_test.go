package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/marketsync/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// mockOrgValidator is a test implementation of OrgValidator
type mockOrgValidator struct {
	ValidOrgs map[string]*OrgInfo
	ShouldFail bool
	FailError  error
}

func (m *mockOrgValidator) ValidateOrg(orgID string) (*OrgInfo, error) {
	if m.ShouldFail {
		return nil, m.FailError
	}
	if info, exists := m.ValidOrgs[orgID]; exists {
		return info, nil
	}
	return nil, errors.New("org not found")
}

func TestOrgMiddleware_HeaderExtraction(t *testing.T) {
	tests := []struct {
		name           string
		orgID          string
		expectedStatus int
		expectedID     string
	}{
		{
			name:           "valid org ID in header",
			orgID:          uuid.New().String(),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing org ID",
			orgID:          "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid org ID format",
			orgID:          "invalid-uuid",
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(OrgMiddleware())

			var capturedOrgID string
			router.GET("/test", func(c *gin.Context) {
				capturedOrgID = GetOrgID(c)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.orgID != "" {
				req.Header.Set(OrgHeaderKey, tt.orgID)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, tt.orgID, capturedOrgID)
			}
		})
	}
}

func TestOrgMiddleware_JWTExtraction(t *testing.T) {
	orgID := uuid.New().String()

	router := gin.New()

	// Simulate JWT middleware that sets org_id
	router.Use(func(c *gin.Context) {
		c.Set("jwt_org_id", orgID)
		c.Next()
	})
	router.Use(OrgMiddleware())

	var capturedOrgID string
	router.GET("/test", func(c *gin.Context) {
		capturedOrgID = GetOrgID(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, orgID, capturedOrgID)
}

func TestOrgMiddleware_JWTOverridesHeader(t *testing.T) {
	jwtOrgID := uuid.New().String()
	headerOrgID := uuid.New().String()

	router := gin.New()

	// JWT sets one org ID
	router.Use(func(c *gin.Context) {
		c.Set("jwt_org_id", jwtOrgID)
		c.Next()
	})
	router.Use(OrgMiddleware())

	var capturedOrgID string
	router.GET("/test", func(c *gin.Context) {
		capturedOrgID = GetOrgID(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	// Header sets a different org ID
	req.Header.Set(OrgHeaderKey, headerOrgID)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	// JWT should take priority over header
	assert.Equal(t, jwtOrgID, capturedOrgID)
}

func TestOrgMiddleware_SkipPaths(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		skipPaths      []string
		orgID          string
		expectedStatus int
	}{
		{
			name:           "health endpoint skipped",
			path:           "/health",
			skipPaths:      []string{"/health"},
			orgID:          "",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "api health endpoint skipped",
			path:           "/api/v1/health",
			skipPaths:      []string{"/api/v1/health"},
			orgID:          "",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "metrics endpoint skipped",
			path:           "/metrics",
			skipPaths:      []string{"/metrics"},
			orgID:          "",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "nested health path skipped",
			path:           "/health/ready",
			skipPaths:      []string{"/health"},
			orgID:          "",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "non-skipped path requires org",
			path:           "/api/test",
			skipPaths:      []string{"/health"},
			orgID:          "",
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			cfg := DefaultOrgConfig()
			cfg.SkipPaths = tt.skipPaths
			router.Use(OrgMiddlewareWithConfig(cfg))

			router.GET(tt.path, func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.orgID != "" {
				req.Header.Set(OrgHeaderKey, tt.orgID)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestOrgMiddleware_OptionalOrg(t *testing.T) {
	router := gin.New()
	router.Use(OptionalOrgMiddleware())

	var capturedOrgID string
	router.GET("/test", func(c *gin.Context) {
		capturedOrgID = GetOrgID(c)
		c.Status(http.StatusOK)
	})

	// Request without org ID should succeed
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, capturedOrgID)
}

func TestOrgMiddleware_WithValidator(t *testing.T) {
	validOrgID := uuid.New().String()
	invalidOrgID := uuid.New().String()

	validator := &mockOrgValidator{
		ValidOrgs: map[string]*OrgInfo{
			validOrgID: {
				ID:   uuid.MustParse(validOrgID),
				Code: "ACME",
			},
		},
	}

	tests := []struct {
		name           string
		orgID          string
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "valid org passes validation",
			orgID:          validOrgID,
			expectedStatus: http.StatusOK,
			expectedCode:   "ACME",
		},
		{
			name:           "invalid org fails validation",
			orgID:          invalidOrgID,
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			cfg := DefaultOrgConfig()
			cfg.Validator = validator
			router.Use(OrgMiddlewareWithConfig(cfg))

			var capturedCode string
			router.GET("/test", func(c *gin.Context) {
				capturedCode = GetOrgCode(c)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set(OrgHeaderKey, tt.orgID)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, tt.expectedCode, capturedCode)
			}
		})
	}
}

func TestOrgMiddleware_SubdomainExtraction(t *testing.T) {
	// Note: The org ID for subdomain extraction returns the subdomain as org code,
	// which then needs to be resolved to a org ID by the validator
	// For this test, we test the extraction logic directly

	tests := []struct {
		name       string
		host       string
		baseDomain string
		expected   string
	}{
		{
			name:       "simple subdomain",
			host:       "acme.marketsync.io",
			baseDomain: "marketsync.io",
			expected:   "acme",
		},
		{
			name:       "subdomain with port",
			host:       "acme.marketsync.io:8080",
			baseDomain: "marketsync.io",
			expected:   "acme",
		},
		{
			name:       "no subdomain",
			host:       "marketsync.io",
			baseDomain: "marketsync.io",
			expected:   "",
		},
		{
			name:       "www subdomain ignored",
			host:       "www.marketsync.io",
			baseDomain: "marketsync.io",
			expected:   "",
		},
		{
			name:       "different base domain",
			host:       "acme.other.com",
			baseDomain: "marketsync.io",
			expected:   "",
		},
		{
			name:       "multi-level subdomain",
			host:       "app.acme.marketsync.io",
			baseDomain: "marketsync.io",
			expected:   "app",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractOrgFromSubdomain(tt.host, tt.baseDomain)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestValidateOrgIDFormat(t *testing.T) {
	tests := []struct {
		name      string
		orgID     string
		wantError bool
	}{
		{
			name:      "valid UUID",
			orgID:     uuid.New().String(),
			wantError: false,
		},
		{
			name:      "invalid UUID - too short",
			orgID:     "invalid",
			wantError: true,
		},
		{
			name:      "invalid UUID - wrong format",
			orgID:     "not-a-valid-uuid-format",
			wantError: true,
		},
		{
			name:      "empty string",
			orgID:     "",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateOrgIDFormat(tt.orgID)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetOrgID(t *testing.T) {
	orgID := uuid.New().String()

	router := gin.New()
	router.Use(OrgMiddleware())

	router.GET("/test", func(c *gin.Context) {
		// Test GetOrgID
		gotID := GetOrgID(c)
		assert.Equal(t, orgID, gotID)

		// Test GetOrgUUID
		gotUUID, err := GetOrgUUID(c)
		require.NoError(t, err)
		assert.Equal(t, uuid.MustParse(orgID), gotUUID)

		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(OrgHeaderKey, orgID)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMustGetOrgID_Panics(t *testing.T) {
	router := gin.New()
	// No org middleware, so no org_id in context

	router.GET("/test", func(c *gin.Context) {
		assert.Panics(t, func() {
			MustGetOrgID(c)
		})
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMustGetOrgUUID_Panics(t *testing.T) {
	router := gin.New()

	router.GET("/test", func(c *gin.Context) {
		assert.Panics(t, func() {
			MustGetOrgUUID(c)
		})
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDefaultOrgConfig(t *testing.T) {
	cfg := DefaultOrgConfig()

	assert.True(t, cfg.HeaderEnabled)
	assert.True(t, cfg.JWTEnabled)
	assert.False(t, cfg.SubdomainEnabled)
	assert.Empty(t, cfg.BaseDomain)
	assert.True(t, cfg.Required)
	assert.Nil(t, cfg.Validator)
	assert.Nil(t, cfg.Logger)
	assert.Contains(t, cfg.SkipPaths, "/health")
	assert.Contains(t, cfg.SkipPaths, "/metrics")
}

func TestOrgMiddleware_ContextPropagation(t *testing.T) {
	orgID := uuid.New().String()

	router := gin.New()
	router.Use(OrgMiddleware())

	router.GET("/test", func(c *gin.Context) {
		// Test that org ID is also available in the request context
		// via the logger package utility
		ctx := c.Request.Context()
		ctxOrgID := logger.GetOrgID(ctx)
		assert.Equal(t, orgID, ctxOrgID)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(OrgHeaderKey, orgID)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOrgMiddleware_DisabledMethods(t *testing.T) {
	orgID := uuid.New().String()

	t.Run("header disabled", func(t *testing.T) {
		router := gin.New()
		cfg := DefaultOrgConfig()
		cfg.HeaderEnabled = false
		cfg.Required = false
		router.Use(OrgMiddlewareWithConfig(cfg))

		var capturedOrgID string
		router.GET("/test", func(c *gin.Context) {
			capturedOrgID = GetOrgID(c)
			c.Status(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(OrgHeaderKey, orgID)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		// Header extraction disabled, so org ID should be empty
		assert.Empty(t, capturedOrgID)
	})

	t.Run("jwt disabled", func(t *testing.T) {
		router := gin.New()

		// Simulate JWT middleware
		router.Use(func(c *gin.Context) {
			c.Set("jwt_org_id", orgID)
			c.Next()
		})

		cfg := DefaultOrgConfig()
		cfg.JWTEnabled = false
		cfg.Required = false
		router.Use(OrgMiddlewareWithConfig(cfg))

		var capturedOrgID string
		router.GET("/test", func(c *gin.Context) {
			capturedOrgID = GetOrgID(c)
			c.Status(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		// JWT extraction disabled, so org ID should be empty
		assert.Empty(t, capturedOrgID)
	})
}

func TestOrgMiddleware_ValidatorError(t *testing.T) {
	orgID := uuid.New().String()
	validatorError := errors.New("database connection failed")

	validator := &mockOrgValidator{
		ShouldFail: true,
		FailError:  validatorError,
	}

	router := gin.New()
	cfg := DefaultOrgConfig()
	cfg.Validator = validator
	router.Use(OrgMiddlewareWithConfig(cfg))

	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(OrgHeaderKey, orgID)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
