package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"insider-tracker/internal/entity"
	"insider-tracker/internal/tracker/config"
	"insider-tracker/pkg/logger"

	"github.com/mmcdole/gofeed"
)

const searchPageSize = 100

var (
	tickerPattern    = regexp.MustCompile(`\(([A-Z]{1,5})\)`)
	cikSuffixPattern = regexp.MustCompile(`\s*\(CIK\s+\d+\)\s*$`)
	accessionPattern = regexp.MustCompile(`accession[-_]number=([0-9-]+)`)
)

// FilingsRepository discovers Form 4 filing documents.
type FilingsRepository interface {
	// ListForm4Filings scans one entity's submission history for Form 4
	// filings, newest first, truncated to max when max > 0.
	ListForm4Filings(ctx context.Context, cik, ticker string, max int) ([]entity.Filing, error)
	// SearchByDateRange pages through the full-text search index for every
	// Form 4 filed inside [startDate, endDate].
	SearchByDateRange(ctx context.Context, startDate, endDate string, max int) ([]entity.Filing, error)
	// RecentFeedFilings lists an entity's latest Form 4 filings from its
	// Atom feed. The returned URL points at the filing index page, so this
	// serves listings and freshness checks, not document fetching.
	RecentFeedFilings(ctx context.Context, cik, ticker string, max int) ([]entity.Filing, error)
}

type filingsRepository struct {
	cfg    *config.Config
	log    *logger.Logger
	client *EdgarClient
}

// NewFilingsRepository creates a new FilingsRepository.
func NewFilingsRepository(cfg *config.Config, log *logger.Logger, client *EdgarClient) FilingsRepository {
	return &filingsRepository{cfg: cfg, log: log, client: client}
}

type submissionsResponse struct {
	Filings struct {
		Recent struct {
			AccessionNumbers []string `json:"accessionNumber"`
			Forms            []string `json:"form"`
			FilingDates      []string `json:"filingDate"`
			PrimaryDocuments []string `json:"primaryDocument"`
		} `json:"recent"`
	} `json:"filings"`
}

func (r *filingsRepository) ListForm4Filings(ctx context.Context, cik, ticker string, max int) ([]entity.Filing, error) {
	u := fmt.Sprintf(r.cfg.EDGAR.SubmissionsURL, cik)
	body, err := r.client.Get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("fetching submissions for CIK %s: %w", cik, err)
	}

	var resp submissionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding submissions for CIK %s: %w", cik, err)
	}

	recent := resp.Filings.Recent
	filings := make([]entity.Filing, 0, max)
	for i, form := range recent.Forms {
		if form != "4" {
			continue
		}
		if i >= len(recent.AccessionNumbers) || i >= len(recent.FilingDates) || i >= len(recent.PrimaryDocuments) {
			break
		}

		accession := recent.AccessionNumbers[i]
		doc := recent.PrimaryDocuments[i]
		filings = append(filings, entity.Filing{
			AccessionNumber: accession,
			FilingDate:      recent.FilingDates[i],
			PrimaryDocument: doc,
			URL:             fmt.Sprintf("%s/%s/%s/%s", r.cfg.EDGAR.ArchiveBaseURL, cik, strings.ReplaceAll(accession, "-", ""), doc),
			Ticker:          ticker,
		})
		if max > 0 && len(filings) >= max {
			break
		}
	}
	return filings, nil
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []searchHit `json:"hits"`
	} `json:"hits"`
}

type searchHit struct {
	ID     string `json:"_id"`
	Source struct {
		CIKs         []string `json:"ciks"`
		DisplayNames []string `json:"display_names"`
		FileDate     string   `json:"file_date"`
	} `json:"_source"`
}

func (r *filingsRepository) SearchByDateRange(ctx context.Context, startDate, endDate string, max int) ([]entity.Filing, error) {
	var hits []searchHit
	offset := 0

	for offset < max {
		size := max - offset
		if size > searchPageSize {
			size = searchPageSize
		}

		params := url.Values{}
		params.Set("forms", "4")
		params.Set("startdt", startDate)
		params.Set("enddt", endDate)
		params.Set("from", strconv.Itoa(offset))
		params.Set("size", strconv.Itoa(size))

		body, err := r.client.Get(ctx, r.cfg.EDGAR.SearchURL+"?"+params.Encode())
		if err != nil {
			r.log.Error("Full-text search page failed", logger.IntField("offset", offset), logger.ErrorField(err))
			break
		}

		var resp searchResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			r.log.Error("Full-text search page undecodable", logger.IntField("offset", offset), logger.ErrorField(err))
			break
		}

		page := resp.Hits.Hits
		if len(page) == 0 {
			break
		}
		hits = append(hits, page...)
		r.log.Info("Full-text search progress",
			logger.IntField("collected", len(hits)),
			logger.IntField("reported_total", resp.Hits.Total.Value),
		)

		if offset+len(page) >= resp.Hits.Total.Value {
			break
		}
		offset += len(page)
	}

	r.log.Info("Full-text search finished", logger.IntField("hits", len(hits)))

	filings := make([]entity.Filing, 0, len(hits))
	for _, hit := range hits {
		accession, filename, ok := strings.Cut(hit.ID, ":")
		if !ok {
			continue
		}
		if len(hit.Source.CIKs) == 0 {
			continue
		}

		cik := strings.TrimLeft(hit.Source.CIKs[0], "0")
		company, ticker := parseDisplayNames(hit.Source.DisplayNames)

		filings = append(filings, entity.Filing{
			AccessionNumber: accession,
			FilingDate:      hit.Source.FileDate,
			PrimaryDocument: filename,
			URL:             fmt.Sprintf("%s/%s/%s/%s", r.cfg.EDGAR.ArchiveBaseURL, cik, strings.ReplaceAll(accession, "-", ""), filename),
			Ticker:          ticker,
			Company:         company,
		})
	}
	return filings, nil
}

// parseDisplayNames extracts a company name and ticker from the search
// hit's two-element display_names field, e.g.
// ["Doe John", "Apple Inc.  (AAPL)  (CIK 0000320193)"].
func parseDisplayNames(names []string) (company, ticker string) {
	if len(names) < 2 {
		return "", ""
	}
	raw := names[1]

	if m := tickerPattern.FindStringSubmatch(raw); m != nil {
		ticker = m[1]
	}

	company = cikSuffixPattern.ReplaceAllString(raw, "")
	if ticker != "" {
		tokenPattern := regexp.MustCompile(`\s*\(` + regexp.QuoteMeta(ticker) + `\)\s*`)
		company = tokenPattern.ReplaceAllString(company, " ")
	}
	return strings.TrimSpace(company), ticker
}

func (r *filingsRepository) RecentFeedFilings(ctx context.Context, cik, ticker string, max int) ([]entity.Filing, error) {
	if max <= 0 {
		max = 10
	}
	u := fmt.Sprintf(r.cfg.EDGAR.FeedURL, cik, max)
	body, err := r.client.Get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("fetching filings feed for CIK %s: %w", cik, err)
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parsing filings feed for CIK %s: %w", cik, err)
	}

	filings := make([]entity.Filing, 0, len(feed.Items))
	for _, item := range feed.Items {
		if len(filings) >= max {
			break
		}

		accession := ""
		if m := accessionPattern.FindStringSubmatch(item.GUID); m != nil {
			accession = m[1]
		}

		date := ""
		if item.UpdatedParsed != nil {
			date = item.UpdatedParsed.Format("2006-01-02")
		}

		filings = append(filings, entity.Filing{
			AccessionNumber: accession,
			FilingDate:      date,
			URL:             item.Link,
			Ticker:          ticker,
			Company:         feed.Title,
		})
	}
	return filings, nil
}
