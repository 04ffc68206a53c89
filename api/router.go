// Package api exposes the upload endpoint and queue inspection over HTTP
package api

import (
	"io"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/mentors-dev/importer/spool"
	"github.com/mentors-dev/importer/store"
	"github.com/mentors-dev/importer/utils"
)

type server struct {
	spool       *spool.Spool
	collections *store.Collections
}

// Router builds the HTTP handler
func Router(config *utils.ConfigStructure, uploadSpool *spool.Spool, collections *store.Collections) http.Handler {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.UseRawPath = true

	if config.LogFormat == "json" {
		utils.SetupJSONLogger(config.LogLevel, os.Stdout)
		gin.DefaultWriter = utils.LogWriter{Logger: log.Logger}
	} else {
		utils.SetupDefaultLogger(config.LogLevel)
	}

	router.Use(gin.Logger(), gin.Recovery())

	s := &server{spool: uploadSpool, collections: collections}

	router.PUT("/upload/:name", s.upload)

	api := router.Group("/api")
	{
		api.GET("/queue", s.queue)
		api.GET("/packages/:name", s.packageInfo)
		api.GET("/packages/:name/:version/results", s.packageResults)
	}

	if config.EnableMetricsEndpoint {
		router.GET("/metrics", func(c *gin.Context) {
			promhttp.Handler().ServeHTTP(c.Writer, c.Request)
		})
	}

	return router
}

// PUT /upload/:name
//
// Streams the request body into the incoming queue. A name rejected by the
// spool (bad extension, part of somebody's queued upload) is a 403.
func (s *server) upload(c *gin.Context) {
	name := c.Params.ByName("name")

	w, err := s.spool.Upload(name)
	if err != nil {
		if _, ok := err.(*spool.UploadError); ok {
			abortWithJSONError(c, http.StatusForbidden, err)
		} else {
			abortWithJSONError(c, http.StatusInternalServerError, err)
		}
		return
	}

	_, err = io.Copy(w, c.Request.Body)
	if err != nil {
		_ = w.Close()
		abortWithJSONError(c, http.StatusInternalServerError, err)
		return
	}

	if err = w.Close(); err != nil {
		if _, ok := err.(*spool.UploadError); ok {
			abortWithJSONError(c, http.StatusForbidden, err)
		} else {
			abortWithJSONError(c, http.StatusInternalServerError, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"stored": name})
}

// GET /api/queue
func (s *server) queue(c *gin.Context) {
	queued, err := s.spool.Queued()
	if err != nil {
		abortWithJSONError(c, http.StatusInternalServerError, err)
		return
	}

	list := make([]gin.H, 0, len(queued))
	for _, changes := range queued {
		list = append(list, gin.H{
			"changes":      changes.ChangesName,
			"source":       changes.Source,
			"version":      changes.Version.String(),
			"distribution": changes.Distribution,
		})
	}

	c.JSON(http.StatusOK, list)
}

// GET /api/packages/:name
func (s *server) packageInfo(c *gin.Context) {
	name := c.Params.ByName("name")

	uploads, err := s.collections.Uploads().BySource(name)
	if err != nil {
		abortWithJSONError(c, http.StatusInternalServerError, err)
		return
	}
	if len(uploads) == 0 {
		abortWithJSONError(c, http.StatusNotFound, nil)
		return
	}

	c.JSON(http.StatusOK, uploads)
}

// GET /api/packages/:name/:version/results
func (s *server) packageResults(c *gin.Context) {
	results, err := s.collections.Results().ByUpload(
		c.Params.ByName("name"), c.Params.ByName("version"))
	if err != nil {
		abortWithJSONError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

func abortWithJSONError(c *gin.Context, code int, err error) {
	body := gin.H{}
	if err != nil {
		body["error"] = err.Error()
	}
	c.AbortWithStatusJSON(code, body)
}
