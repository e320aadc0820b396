package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/humboldtjobs/humboldt-jobs/internal/jobstore"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// handleListJobs serves the paginated browse listing with optional
// category, employer, source, and free-text filters.
func (s *Server) handleListJobs(c *gin.Context) {
	pool, err := s.store.Snapshot(c.Request.Context())
	if err != nil {
		s.logger.Error("job snapshot failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "job data unavailable"})
		return
	}

	filtered := pool
	if category := strings.TrimSpace(c.Query("category")); category != "" {
		target := strings.ToLower(category)
		filtered = filtered.Where(func(j *jobstore.Job) bool {
			return strings.Contains(strings.ToLower(j.Category), target)
		})
	}
	if employer := strings.TrimSpace(c.Query("employer")); employer != "" {
		target := strings.ToLower(employer)
		filtered = filtered.Where(func(j *jobstore.Job) bool {
			return strings.Contains(strings.ToLower(j.Employer), target)
		})
	}
	if source := strings.TrimSpace(c.Query("source")); source != "" {
		target := strings.ToLower(source)
		filtered = filtered.Where(func(j *jobstore.Job) bool {
			return strings.EqualFold(j.SourceName, target) || strings.Contains(strings.ToLower(j.SourceName), target)
		})
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		target := strings.ToLower(search)
		filtered = filtered.Where(func(j *jobstore.Job) bool {
			return strings.Contains(strings.ToLower(j.Title), target) ||
				strings.Contains(strings.ToLower(j.Description), target) ||
				strings.Contains(strings.ToLower(j.Employer), target)
		})
	}

	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := queryInt(c, "limit", defaultPageSize)
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	total := filtered.Len()
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	var pageJobs []*jobstore.Job
	if start < total {
		end := start + pageSize
		if end > total {
			end = total
		}
		pageJobs = filtered.Items[start:end]
	}

	c.JSON(http.StatusOK, gin.H{
		"jobs":       jobViews(pageJobs),
		"total":      total,
		"page":       page,
		"totalPages": totalPages,
	})
}

func (s *Server) handleGetJob(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	job, err := s.store.Get(c.Request.Context(), id)
	if err != nil {
		s.logger.Error("job lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "job data unavailable"})
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	view := newJobView(job)
	c.JSON(http.StatusOK, gin.H{
		"job":         view,
		"description": job.Description,
		"requirement": job.Requirements,
	})
}

func (s *Server) handleEmployers(c *gin.Context) {
	minJobs := queryInt(c, "minJobs", 1)

	employers, err := s.store.Employers(c.Request.Context(), strings.TrimSpace(c.Query("category")), minJobs)
	if err != nil {
		s.logger.Error("employer listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "employer data unavailable"})
		return
	}
	if employers == nil {
		employers = []jobstore.EmployerCount{}
	}

	c.JSON(http.StatusOK, gin.H{"employers": employers})
}

func (s *Server) handleCategories(c *gin.Context) {
	categories, err := s.store.Categories(c.Request.Context())
	if err != nil {
		s.logger.Error("category listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "category data unavailable"})
		return
	}
	if categories == nil {
		categories = []jobstore.CategoryCount{}
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.store.GetStats(c.Request.Context())
	if err != nil {
		s.logger.Error("stats lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats unavailable"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
