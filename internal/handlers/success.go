package handlers

import (
	"context"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SuccessResolver is satisfied by gate.SuccessGate.
type SuccessResolver interface {
	Resolve(ctx context.Context, raw string) (string, bool)
}

var successPage = template.Must(template.New("success").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Payment successful</title></head>
<body style="font-family: Arial, sans-serif; text-align: center; padding: 40px;">
	<h1>Thank you, {{.Name}}!</h1>
	<p>Your payment went through. A confirmation is on its way.</p>
	<a href="{{.Home}}">Continue shopping</a>
</body>
</html>`))

type SuccessHandler struct {
	Gate SuccessResolver
	// BaseURL is the storefront origin. Empty means this host.
	BaseURL string
}

func (h *SuccessHandler) home() string {
	return h.BaseURL + "/"
}

// Show handles GET /success. Anything but a valid token goes back home.
func (h *SuccessHandler) Show(c *gin.Context) {
	name, ok := h.Gate.Resolve(c.Request.Context(), c.Query("token"))
	if !ok {
		c.Redirect(http.StatusFound, h.home())
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := successPage.Execute(c.Writer, gin.H{"Name": name, "Home": h.home()}); err != nil {
		_ = c.Error(err)
	}
}
