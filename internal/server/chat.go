package server

import (
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/humboldtjobs/humboldt-jobs/internal/ai/gemini"
	"github.com/humboldtjobs/humboldt-jobs/internal/assistant"
	"github.com/humboldtjobs/humboldt-jobs/internal/jobstore"
)

const maxQueryLength = 500

type chatRequest struct {
	Query          string     `json:"query"`
	History        []chatTurn `json:"history"`
	ShownJobTitles []string   `json:"shownJobTitles"`
}

type chatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Response     string                  `json:"response"`
	Jobs         []jobView               `json:"jobs"`
	QuickActions []assistant.QuickAction `json:"quickActions"`
	TotalMatches int                     `json:"totalMatches"`
	Cached       bool                    `json:"cached"`
	Moderated    bool                    `json:"moderated,omitempty"`
}

// jobView is the wire shape of one posting in API responses.
type jobView struct {
	Title              string `json:"title"`
	Employer           string `json:"employer"`
	Location           string `json:"location"`
	Salary             string `json:"salary"`
	Category           string `json:"category"`
	Classification     string `json:"classification,omitempty"`
	URL                string `json:"url"`
	ExternalURL        string `json:"externalUrl"`
	EmploymentType     string `json:"employmentType,omitempty"`
	ExperienceLevel    string `json:"experienceLevel,omitempty"`
	EducationRequired  string `json:"educationRequired,omitempty"`
	IsRemote           bool   `json:"isRemote"`
	Department         string `json:"department,omitempty"`
	DescriptionSnippet string `json:"descriptionSnippet,omitempty"`
	PostedDate         string `json:"postedDate,omitempty"`
}

const snippetLength = 200

func newJobView(job *jobstore.Job) jobView {
	view := jobView{
		Title:              job.Title,
		Employer:           job.Employer,
		Location:           job.Location,
		Salary:             job.SalaryText,
		Category:           job.Category,
		Classification:     job.Classification,
		URL:                job.URL,
		ExternalURL:        job.ExternalURL,
		EmploymentType:     job.JobType,
		ExperienceLevel:    job.ExperienceLevel,
		EducationRequired:  job.EducationRequired,
		IsRemote:           job.IsRemote,
		Department:         job.Department,
		DescriptionSnippet: job.DescriptionSnippet(snippetLength),
	}
	if !job.PostedDate.IsZero() {
		view.PostedDate = job.PostedDate.Format(time.DateOnly)
	}
	return view
}

func jobViews(jobs []*jobstore.Job) []jobView {
	views := make([]jobView, 0, len(jobs))
	for _, job := range jobs {
		views = append(views, newJobView(job))
	}
	return views
}

// clientIdentity buckets requests for rate limiting by the forwarded client
// address. Clients behind shared infrastructure without the header share one
// bucket.
func clientIdentity(c *gin.Context) string {
	forwarded := c.GetHeader("X-Forwarded-For")
	if forwarded == "" {
		return "unknown"
	}
	first, _, _ := strings.Cut(forwarded, ",")
	if first = strings.TrimSpace(first); first != "" {
		return first
	}
	return "unknown"
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}
	// The limit counts characters, not bytes.
	if utf8.RuneCountInString(req.Query) > maxQueryLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query exceeds 500 characters"})
		return
	}

	identity := clientIdentity(c)
	if ok, _ := s.limiter.Allow(identity); !ok {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":     "daily request limit reached",
			"remaining": 0,
		})
		return
	}

	history := make([]gemini.Turn, 0, len(req.History))
	for _, turn := range req.History {
		history = append(history, gemini.Turn{Role: turn.Role, Content: turn.Content})
	}

	result, err := s.assistant.Answer(c.Request.Context(), &assistant.Request{
		Query:          query,
		History:        history,
		ShownJobTitles: req.ShownJobTitles,
	})
	if err != nil {
		s.logger.Error("chat pipeline failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong, please try again"})
		return
	}

	resp := chatResponse{
		Response:     result.Response,
		Jobs:         jobViews(result.Jobs),
		QuickActions: result.QuickActions,
		TotalMatches: result.TotalMatches,
		Cached:       result.Cached,
		Moderated:    result.Moderated,
	}
	if resp.QuickActions == nil {
		resp.QuickActions = []assistant.QuickAction{}
	}

	c.JSON(http.StatusOK, resp)
}
