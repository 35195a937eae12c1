package http

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/SchoolHTMLDeveloper/chatfix/internal/core"
	"github.com/SchoolHTMLDeveloper/chatfix/internal/proto"
)

//go:embed assets/admin.html
var adminPage []byte

// ErrorResponse is the JSON error body used across HTTP handlers.
type ErrorResponse struct {
	Error string `json:"error"`
}

func healthHandler(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// historyHandler serves the full current history as JSON. Reads go through
// the hub so they serialize with everything else touching the log.
func historyHandler(hub *core.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		msgs := hub.HistorySnapshot(c.Request.Context())
		out := make([]proto.MessageData, 0, len(msgs))
		for _, m := range msgs {
			out = append(out, messageData(m))
		}
		c.JSON(http.StatusOK, out)
	}
}

func adminPageHandler(passwordHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if passwordHash == "" {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "admin page disabled"})
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", adminPage)
	}
}

// adminAuthHandler compares a submitted password against the configured
// bcrypt hash. It gates only the admin page; command authority comes from
// the identity allow-list, never from this password.
func adminAuthHandler(passwordHash string) gin.HandlerFunc {
	type authRequest struct {
		Password string `json:"password"`
	}

	return func(c *gin.Context) {
		if passwordHash == "" {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "admin page disabled"})
			return
		}

		var req authRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "wrong password"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
