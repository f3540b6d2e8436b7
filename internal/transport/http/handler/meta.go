package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIVersion is the version served under {base}/v1 and aliased by {base} and
// {base}/latest.
const APIVersion = 1

type MetaHandler struct {
	apiName  string
	basePath string
}

func NewMetaHandler(apiName, basePath string) *MetaHandler {
	return &MetaHandler{apiName: apiName, basePath: basePath}
}

func (h *MetaHandler) Welcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"welcome_text": fmt.Sprintf("This is the %s API. Check %s%s for more info.", h.apiName, requestOrigin(c), h.basePath),
	})
}

func (h *MetaHandler) VersionRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("%s API %d active", h.apiName, APIVersion),
	})
}

func requestOrigin(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if forwarded := c.GetHeader("X-Forwarded-Proto"); forwarded == "http" || forwarded == "https" {
		scheme = forwarded
	}
	return scheme + "://" + c.Request.Host
}
