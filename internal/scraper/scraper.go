// Package scraper ingests NEOGOV-style RSS feeds into the job store. One
// fetch and one parser per feed; scheduling is up to the caller.
package scraper

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/humboldtjobs/humboldt-jobs/internal/jobstore"
)

const (
	fetchTimeout = 30 * time.Second

	// maxFeedBytes bounds how much of a feed body is read.
	maxFeedBytes = 4 << 20
)

// Feed is one configured RSS source.
type Feed struct {
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
}

type jobWriter interface {
	Upsert(ctx context.Context, job *jobstore.Job) (bool, error)
	LogScrape(ctx context.Context, inserted, updated, total int, duration time.Duration) error
	InvalidateSnapshot()
}

// Summary reports the outcome of one scrape run.
type Summary struct {
	Inserted    int
	Updated     int
	FailedFeeds int
}

// Scraper fetches configured feeds and upserts their postings by canonical
// URL.
type Scraper struct {
	client *http.Client
	store  jobWriter
	logger *zap.Logger
	now    func() time.Time
}

func New(store jobWriter, logger *zap.Logger) *Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scraper{
		client: &http.Client{Timeout: fetchTimeout},
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Run fetches every feed once. A failing feed is logged and skipped; the run
// fails only when no feed could be ingested at all.
func (s *Scraper) Run(ctx context.Context, feeds []Feed) (*Summary, error) {
	started := s.now()
	summary := &Summary{}

	for _, feed := range feeds {
		inserted, updated, err := s.ingestFeed(ctx, feed)
		if err != nil {
			s.logger.Warn("feed ingest failed",
				zap.String("feed", feed.Name),
				zap.Error(err),
			)
			summary.FailedFeeds++
			continue
		}

		s.logger.Info("feed ingested",
			zap.String("feed", feed.Name),
			zap.Int("inserted", inserted),
			zap.Int("updated", updated),
		)
		summary.Inserted += inserted
		summary.Updated += updated
	}

	if len(feeds) > 0 && summary.FailedFeeds == len(feeds) {
		return summary, fmt.Errorf("all %d feeds failed", len(feeds))
	}

	total := summary.Inserted + summary.Updated
	if err := s.store.LogScrape(ctx, summary.Inserted, summary.Updated, total, s.now().Sub(started)); err != nil {
		s.logger.Warn("recording scrape run failed", zap.Error(err))
	}

	if total > 0 {
		s.store.InvalidateSnapshot()
	}

	return summary, nil
}

func (s *Scraper) ingestFeed(ctx context.Context, feed Feed) (inserted, updated int, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("building request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("fetching feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return 0, 0, fmt.Errorf("reading feed body: %w", err)
	}

	var doc rssDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return 0, 0, fmt.Errorf("parsing feed xml: %w", err)
	}

	for _, item := range doc.Channel.Items {
		job := jobFromItem(feed, item, s.now())
		if job == nil {
			continue
		}

		created, err := s.store.Upsert(ctx, job)
		if err != nil {
			s.logger.Warn("upsert failed",
				zap.String("url", job.URL),
				zap.Error(err),
			)
			continue
		}
		if created {
			inserted++
		} else {
			updated++
		}
	}

	return inserted, updated, nil
}

type rssDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title string    `xml:"title"`
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	Description string `xml:"description"`
	Category    string `xml:"category"`
	PubDate     string `xml:"pubDate"`
}

var (
	tagPattern    = regexp.MustCompile(`<[^>]+>`)
	salaryPattern = regexp.MustCompile(`(?i)salary:?\s*([^<\n]+)`)
)

// jobFromItem normalizes one feed entry, or returns nil when it lacks the
// identity fields.
func jobFromItem(feed Feed, item rssItem, scrapedAt time.Time) *jobstore.Job {
	title := strings.TrimSpace(item.Title)
	link := strings.TrimSpace(item.Link)
	if title == "" || link == "" {
		return nil
	}

	description := cleanDescription(item.Description)

	job := &jobstore.Job{
		SourceID:         strings.TrimSpace(item.GUID),
		SourceName:       feed.Name,
		Title:            title,
		Employer:         feed.Name,
		Category:         normalizeCategory(item.Category, title),
		OriginalCategory: strings.TrimSpace(item.Category),
		URL:              link,
		Description:      description,
		PostedDate:       parsePubDate(item.PubDate),
		ScrapedAt:        scrapedAt.UTC(),
		IsActive:         true,
	}
	if job.SourceID == "" {
		job.SourceID = link
	}

	if m := salaryPattern.FindStringSubmatch(item.Description); m != nil {
		job.SalaryText = strings.TrimSpace(html.UnescapeString(m[1]))
		parsed := jobstore.ParseSalary(job.SalaryText)
		job.SalaryMin = parsed.MinAnnual
		job.SalaryMax = parsed.MaxAnnual
		job.SalaryType = parsed.Type
	}

	job.Requirements = extractRequirements(description)
	job.JobType = detectJobType(title + " " + description)
	job.ExperienceLevel = detectExperience(title, description)
	job.EducationRequired = detectEducation(title + " " + description)
	job.HasBenefits = benefitsPattern.MatchString(description)

	return job
}

func cleanDescription(raw string) string {
	text := tagPattern.ReplaceAllString(raw, " ")
	text = html.UnescapeString(text)
	return strings.Join(strings.Fields(text), " ")
}

var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
}

func parsePubDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// standardCategories maps trigger words found in feed categories or titles to
// the categories the browse API and detectors use.
var standardCategories = []struct {
	label    string
	triggers []string
}{
	{"Healthcare", []string{"health", "medical", "nurs", "clinic", "hospital", "dental", "behavioral"}},
	{"Education", []string{"educat", "school", "teach", "instruct", "library"}},
	{"Government", []string{"government", "public", "county", "city of", "administrat", "clerk"}},
	{"Retail", []string{"retail", "sales", "store", "cashier"}},
	{"Hospitality", []string{"hospitality", "hotel", "restaurant", "food", "tourism"}},
	{"Construction", []string{"construction", "trades", "carpent", "electric", "plumb", "maintenance"}},
	{"Nonprofit", []string{"nonprofit", "non-profit", "community service", "social service"}},
}

func normalizeCategory(rawCategory, title string) string {
	haystack := strings.ToLower(rawCategory + " " + title)
	for _, category := range standardCategories {
		for _, trigger := range category.triggers {
			if strings.Contains(haystack, trigger) {
				return category.label
			}
		}
	}
	if trimmed := strings.TrimSpace(rawCategory); trimmed != "" {
		return trimmed
	}
	return "Other"
}
