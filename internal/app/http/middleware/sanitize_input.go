package middleware

import (
	"bytes"
	"encoding/json"
	"html"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
)

// SanitizeAndCleanInputMiddleware strips markup from every string in a JSON
// body, at any depth. Non-JSON bodies (multipart uploads) pass untouched.
func SanitizeAndCleanInputMiddleware() gin.HandlerFunc {
	policy := bluemonday.StrictPolicy()

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost &&
			c.Request.Method != http.MethodPut &&
			c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}
		if !strings.HasPrefix(c.ContentType(), "application/json") || c.Request.Body == nil {
			c.Next()
			return
		}

		buf, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid body"})
			return
		}
		if len(bytes.TrimSpace(buf)) == 0 {
			c.Request.Body = io.NopCloser(bytes.NewReader(buf))
			c.Next()
			return
		}

		var body interface{}
		if err := json.Unmarshal(buf, &body); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Malformed JSON"})
			return
		}

		newBody, err := json.Marshal(clean(policy, body))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Malformed JSON"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(newBody))
		c.Request.ContentLength = int64(len(newBody))

		c.Next()
	}
}

func clean(policy *bluemonday.Policy, v interface{}) interface{} {
	switch t := v.(type) {
	case string:
		return cleanString(policy, t)
	case map[string]interface{}:
		for k, item := range t {
			t[k] = clean(policy, item)
		}
		return t
	case []interface{}:
		for i, item := range t {
			t[i] = clean(policy, item)
		}
		return t
	default:
		return v
	}
}

const maxCleanPasses = 4

// cleanString strips markup until the unescaped text is stable, so
// entity-encoded tags cannot come back as live markup. The result is
// plain text as typed ("Lake & Sea", not "Lake &amp; Sea").
func cleanString(policy *bluemonday.Policy, s string) string {
	for i := 0; i < maxCleanPasses; i++ {
		next := html.UnescapeString(policy.Sanitize(html.UnescapeString(s)))
		if next == s {
			return s
		}
		s = next
	}
	// still changing: keep the escaped form
	return policy.Sanitize(s)
}
