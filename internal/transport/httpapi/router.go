// Package httpapi реализует REST API каталога на gin.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// NewRouter собирает gin.Engine с middleware и маршрутами /v1/books.
func NewRouter(handler *BookHandler, logger *log.Entry) *gin.Engine {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	logger = logger.WithField("component", "http-api")

	router := gin.New()
	router.Use(RequestID(), Logger(logger), Recovery(logger))

	router.NoRoute(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{
			HTTPStatus: statusLine(http.StatusNotFound),
			ErrorName:  "NOT_FOUND",
			Text:       "Requested resource doesn't exist",
		})
	})

	handler.Register(router.Group("/v1/books"))
	return router
}
