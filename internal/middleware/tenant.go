package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// ContextTenantID is the key for the caller's tenant id in gin context.
	ContextTenantID = "tenant_id"
	// ContextIsSuperAdmin is the key for the superadmin flag in gin context.
	ContextIsSuperAdmin = "is_super_admin"

	// HeaderTenantID carries the caller's tenant. Set by the gateway after
	// authentication; this service trusts it.
	HeaderTenantID = "X-Tenant-ID"
	// HeaderUserRole carries the caller's role.
	HeaderUserRole = "X-User-Role"

	roleSuperAdmin = "SUPER_ADMIN"
)

// Tenant extracts tenant identity from request headers into the gin context.
func Tenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextTenantID, strings.TrimSpace(c.GetHeader(HeaderTenantID)))
		c.Set(ContextIsSuperAdmin, strings.EqualFold(c.GetHeader(HeaderUserRole), roleSuperAdmin))
		c.Next()
	}
}

// TenantFrom returns the tenant id and superadmin flag set by Tenant.
func TenantFrom(c *gin.Context) (tenantID string, isSuperAdmin bool) {
	tenantID = c.GetString(ContextTenantID)
	isSuperAdmin = c.GetBool(ContextIsSuperAdmin)
	return tenantID, isSuperAdmin
}
