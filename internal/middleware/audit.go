package middleware

import (
	"bytes"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/teamhq/teamhq/internal/services"
)

const contextAudited = "audited"

// MarkAudited tells the audit middleware that the handler's operation already
// emitted its own audit entry (the core writes them inside its transactions).
func MarkAudited(c *gin.Context) {
	c.Set(contextAudited, true)
}

// AuditFallback records write operations (POST/PUT/DELETE) to audit_logs for
// any route whose handler did not audit itself.
func AuditFallback() gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		// Only audit write operations
		if method != "POST" && method != "PUT" && method != "DELETE" {
			c.Next()
			return
		}

		// Capture request body (up to 2000 chars for metadata)
		var bodySnippet string
		if c.Request.Body != nil {
			bodyBytes, _ := io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			bodySnippet = string(bodyBytes)
			if len(bodySnippet) > 2000 {
				bodySnippet = bodySnippet[:2000] + "...[truncated]"
			}
			bodySnippet = maskSensitiveFields(bodySnippet)
		}

		c.Next()

		if c.GetBool(contextAudited) {
			return
		}

		userID := GetUserID(c)
		var uid *uint
		if userID > 0 {
			uid = &userID
		}

		status := c.Writer.Status()
		action := routeAction(c.FullPath(), method)

		services.RecordAudit(uid, action, map[string]interface{}{
			"method":   method,
			"path":     c.Request.URL.Path,
			"status":   status,
			"username": GetUsername(c),
			"body":     bodySnippet,
		}, c.ClientIP(), c.Request.UserAgent())
	}
}

// routeAction derives an action label from a Gin route pattern.
// e.g. "/api/teams/:id" + "PUT" → "Teams Update"
func routeAction(fullPath, method string) string {
	path := strings.TrimPrefix(fullPath, "/api/")

	parts := strings.SplitN(path, "/", 2)
	resource := parts[0]
	if resource == "" {
		resource = "unknown"
	}
	resource = strings.Title(strings.ReplaceAll(resource, "-", " "))

	var verb string
	switch method {
	case "POST":
		verb = "Create"
	case "PUT":
		verb = "Update"
	case "DELETE":
		verb = "Delete"
	default:
		verb = method
	}

	return resource + " " + verb
}

// maskSensitiveFields replaces sensitive values in JSON body
func maskSensitiveFields(body string) string {
	sensitiveKeys := []string{"password", "old_password", "new_password", "secret", "token", "refresh_token"}
	lower := strings.ToLower(body)
	for _, key := range sensitiveKeys {
		if strings.Contains(lower, key) {
			body = maskJSONValue(body, key)
		}
	}
	return body
}

// maskJSONValue does a best-effort mask of JSON string values for a given key
func maskJSONValue(body, key string) string {
	lower := strings.ToLower(body)
	idx := strings.Index(lower, "\""+key+"\"")
	if idx == -1 {
		return body
	}

	// Find the colon after the key
	colonIdx := strings.Index(body[idx+len(key)+2:], ":")
	if colonIdx == -1 {
		return body
	}
	valueStart := idx + len(key) + 2 + colonIdx + 1

	// Skip whitespace
	for valueStart < len(body) && (body[valueStart] == ' ' || body[valueStart] == '\t') {
		valueStart++
	}

	if valueStart >= len(body) {
		return body
	}

	// If it's a quoted string, mask it
	if body[valueStart] == '"' {
		endQuote := strings.Index(body[valueStart+1:], "\"")
		if endQuote == -1 {
			return body
		}
		return body[:valueStart+1] + "***" + body[valueStart+1+endQuote:]
	}

	return body
}
