package api

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
)

const serverTitle = "ControlNest Server"

var homeTemplate = template.Must(template.New("home").Parse(`<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
      html, body { height: 100%; width: 100%; margin: 0; }
      body {
        background-image: linear-gradient(to bottom right, #FDFCFB, #E2D1C3);
        font-family: sans-serif;
        display: flex;
        flex-direction: column;
        justify-content: center;
        align-items: center;
      }
      h1 {
        font-size: 70px;
        font-weight: 600;
        background-image: radial-gradient(circle, #553c9a, #ee4b2b);
        color: transparent;
        background-clip: text;
        -webkit-background-clip: text;
        margin: 0;
      }
      p { text-align: center; color: #4c4a37; font-size: 18px; line-height: 32px; margin: 0 0 24px; }
    </style>
  </head>
  <body>
    <h1>{{.Title}}</h1>
    <p>{{.Content}}</p>
  </body>
</html>`))

// Home serves the welcome page.
func (h *Handler) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "home", gin.H{
		"Title":   serverTitle,
		"Content": "Welcome to the " + serverTitle + "!",
	})
}

// Healthz reports whether the database answers.
func (h *Handler) Healthz(c *gin.Context) {
	sqlDB, err := h.store.DB().DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
