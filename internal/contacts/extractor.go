// Package contacts discovers recruiter and HR contacts for target companies
// using web search and careers-page scraping.
package contacts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/outreach-agent/internal/classify"
	"github.com/jonathan/outreach-agent/internal/fetch"
	"github.com/jonathan/outreach-agent/internal/logging"
	"github.com/jonathan/outreach-agent/internal/ratelimit"
	"github.com/jonathan/outreach-agent/internal/search"
	"github.com/jonathan/outreach-agent/internal/types"
)

// JobPostingTitle labels contacts found in job postings.
const JobPostingTitle = "HR Contact (from job posting)"

// Result counts requested from the search service per method.
const (
	searchResults     = 10
	linkedInResults   = 8
	profileResults    = 3
	jobPostingResults = 5
)

// DefaultCareersPaths are the path suffixes tried on a company website.
var DefaultCareersPaths = []string{
	"/careers", "/jobs", "/career", "/join-us", "/work-with-us", "/hiring", "/contact",
}

// PageFetcher retrieves and parses a web page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Page, error)
}

// Options configures an Extractor.
type Options struct {
	// Locale is the search country code, e.g. "in".
	Locale string
	// Country and Industry annotate every contact; Country is also the locale
	// marker of the professional-network query.
	Country  string
	Industry string
	// CareersPaths overrides DefaultCareersPaths.
	CareersPaths []string
	// PagePacer spaces careers page attempts.
	PagePacer ratelimit.Pacer
	// CompanyPacer spaces companies.
	CompanyPacer ratelimit.Pacer
}

// Extractor runs the discovery methods for each company. Searches are paced
// by the Searcher it is given; see search.NewThrottled.
type Extractor struct {
	searcher search.Searcher
	pages    PageFetcher
	opts     Options
}

// NewExtractor creates an Extractor. Nil pacers disable pacing.
func NewExtractor(searcher search.Searcher, pages PageFetcher, opts Options) *Extractor {
	if len(opts.CareersPaths) == 0 {
		opts.CareersPaths = DefaultCareersPaths
	}
	if opts.PagePacer == nil {
		opts.PagePacer = ratelimit.Unlimited()
	}
	if opts.CompanyPacer == nil {
		opts.CompanyPacer = ratelimit.Unlimited()
	}
	return &Extractor{searcher: searcher, pages: pages, opts: opts}
}

// Run processes companies sequentially and returns every contact found, in
// discovery order, plus one outcome per method and company. A failing method
// never stops the remaining methods or companies. Cancelling ctx stops the run
// after the current method.
func (e *Extractor) Run(ctx context.Context, companies []types.Company) RunReport {
	var report RunReport
	seen := NewSeenSet()

	for i, company := range companies {
		if err := e.opts.CompanyPacer.Wait(ctx); err != nil {
			logging.Warn(ctx, "discovery cancelled", zap.Int("companies_done", i), zap.Error(err))
			break
		}

		cctx := logging.WithFields(ctx, zap.String("company", company.Name))
		logging.Info(cctx, "processing company", zap.Int("index", i+1), zap.Int("total", len(companies)))

		found, outcomes := e.ExtractCompany(cctx, company, seen)
		report.Contacts = append(report.Contacts, found...)
		report.Outcomes = append(report.Outcomes, outcomes...)

		logging.Info(cctx, "company done", zap.Int("contacts", len(found)))
		if ctx.Err() != nil {
			break
		}
	}

	logging.Info(ctx, "discovery finished",
		zap.Int("contacts", len(report.Contacts)),
		zap.Int("deliverable", len(report.Deliverable())),
		zap.Int("unique_addresses", seen.Len()),
		zap.Int("failed_methods", len(report.Failures())))
	return report
}

// ExtractCompany runs the four methods for one company against a shared seen set.
func (e *Extractor) ExtractCompany(ctx context.Context, company types.Company, seen *SeenSet) ([]types.Contact, []MethodOutcome) {
	methods := []struct {
		method Method
		run    func(context.Context, types.Company, *SeenSet) MethodOutcome
	}{
		{MethodSearch, e.searchContacts},
		{MethodCareers, e.careersContacts},
		{MethodLinkedIn, e.linkedInContacts},
		{MethodJobPosting, e.jobPostingContacts},
	}

	var found []types.Contact
	outcomes := make([]MethodOutcome, 0, len(methods))
	for _, m := range methods {
		if ctx.Err() != nil {
			outcomes = append(outcomes, MethodOutcome{Method: m.method, Company: company.Name, Failure: FailureCancelled, Err: ctx.Err()})
			continue
		}
		outcome := e.runMethod(ctx, m.method, company, seen, m.run)
		for i := range outcome.Contacts {
			e.annotate(&outcome.Contacts[i], company)
		}
		found = append(found, outcome.Contacts...)
		outcomes = append(outcomes, outcome)
	}
	return found, outcomes
}

// runMethod isolates a method so a panic becomes a failed outcome.
func (e *Extractor) runMethod(
	ctx context.Context,
	method Method,
	company types.Company,
	seen *SeenSet,
	run func(context.Context, types.Company, *SeenSet) MethodOutcome,
) (outcome MethodOutcome) {
	mctx := logging.WithFields(ctx, zap.String("method", string(method)))
	defer func() {
		if r := recover(); r != nil {
			outcome = MethodOutcome{
				Method:  method,
				Company: company.Name,
				Failure: FailurePanic,
				Err:     fmt.Errorf("discovery method panicked: %v", r),
			}
		}
		if outcome.Failed() {
			logging.Warn(mctx, "discovery method failed",
				zap.String("reason", string(outcome.Failure)), zap.Error(outcome.Err))
		} else {
			logging.Debug(mctx, "discovery method done", zap.Int("contacts", len(outcome.Contacts)))
		}
	}()

	outcome = run(mctx, company, seen)
	outcome.Method = method
	outcome.Company = company.Name
	return outcome
}

func (e *Extractor) annotate(c *types.Contact, company types.Company) {
	c.Company = company.Name
	c.CompanyDomain = company.Domain
	c.CompanyWebsite = company.Website
	c.Country = e.opts.Country
	c.Industry = e.opts.Industry
}

// searchQueries builds the query battery for search-based discovery.
func searchQueries(company types.Company) []string {
	name, domain := company.Name, company.Domain
	return []string{
		fmt.Sprintf(`"%s" HR email contact site:%s`, name, domain),
		fmt.Sprintf(`"%s" recruiter email site:%s`, name, domain),
		fmt.Sprintf(`"%s" careers contact email`, name),
		fmt.Sprintf(`"%s" talent acquisition email`, name),
		fmt.Sprintf(`"%s" hiring manager email`, name),
		fmt.Sprintf(`site:%s "careers@" OR "hr@" OR "jobs@" OR "recruitment@"`, domain),
	}
}

func (e *Extractor) searchContacts(ctx context.Context, company types.Company, seen *SeenSet) MethodOutcome {
	var outcome MethodOutcome
	queries := searchQueries(company)
	var errs []error

	for _, q := range queries {
		results, err := e.searcher.Search(ctx, search.Query{Text: q, Num: searchResults, Locale: e.opts.Locale})
		if err != nil {
			logging.Debug(ctx, "search query failed", zap.String("query", q), zap.Error(err))
			errs = append(errs, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		for _, r := range results {
			outcome.Contacts = append(outcome.Contacts,
				contactsFromResult(r, company, seen, types.SourceSearch, types.ConfidenceHigh, "")...)
		}
	}

	if len(errs) == len(queries) || ctx.Err() != nil {
		outcome.Failure = failureFor(ctx, FailureSearchUnavailable)
		outcome.Err = errors.Join(errs...)
	}
	return outcome
}

func (e *Extractor) careersContacts(ctx context.Context, company types.Company, seen *SeenSet) MethodOutcome {
	var outcome MethodOutcome
	base := strings.TrimRight(company.Website, "/")
	var errs []error
	reached := 0

	for _, path := range e.opts.CareersPaths {
		if err := e.opts.PagePacer.Wait(ctx); err != nil {
			errs = append(errs, err)
			break
		}
		pageURL := base + path
		page, err := e.pages.Fetch(ctx, pageURL)
		if err != nil {
			logging.Info(ctx, "careers page unavailable", zap.String("url", pageURL), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		reached++

		candidates := append(classify.ExtractEmails(page.Text), mailtoAddresses(page)...)
		for _, email := range dedupe(candidates) {
			if !accept(email, company, seen) {
				continue
			}
			d := detailsOnPage(page, email)
			outcome.Contacts = append(outcome.Contacts, types.Contact{
				Email:      email,
				Name:       d.Name,
				Title:      d.Title,
				Source:     types.SourceCareers,
				SourceURL:  pageURL,
				Confidence: types.ConfidenceHigh,
			})
		}
	}

	if reached == 0 {
		outcome.Failure = failureFor(ctx, FailurePagesUnreachable)
		outcome.Err = errors.Join(errs...)
	}
	return outcome
}

// linkedInQuery builds the professional-network profile query.
func linkedInQuery(company types.Company, country string) string {
	q := fmt.Sprintf(`"%s" "HR" OR "Talent Acquisition" OR "Recruiter" site:linkedin.com/in`, company.Name)
	if country != "" {
		q += " " + country
	}
	return q
}

func (e *Extractor) linkedInContacts(ctx context.Context, company types.Company, seen *SeenSet) MethodOutcome {
	var outcome MethodOutcome

	results, err := e.searcher.Search(ctx, search.Query{
		Text:   linkedInQuery(company, e.opts.Country),
		Num:    linkedInResults,
		Locale: e.opts.Locale,
	})
	if err != nil {
		outcome.Failure = failureFor(ctx, FailureSearchUnavailable)
		outcome.Err = err
		return outcome
	}

	profiles := make(map[string]bool)
	for _, r := range results {
		if !isProfileURL(r.Link) || profiles[r.Link] {
			continue
		}
		if !classify.ContainsHRKeyword(r.Title + " " + r.Snippet) {
			continue
		}
		person := ProfileName(r.Title)
		if person == "" {
			continue
		}
		profiles[r.Link] = true

		email := e.profileEmail(ctx, person, company, seen)
		confidence := types.ConfidenceLow
		if email != "" {
			confidence = types.ConfidenceMedium
		}
		outcome.Contacts = append(outcome.Contacts, types.Contact{
			Email:       email,
			Name:        person,
			Title:       classify.TitleFromProfileSnippet(r.Snippet),
			LinkedInURL: r.Link,
			Source:      types.SourceLinkedIn,
			SourceURL:   r.Link,
			Confidence:  confidence,
		})
	}
	return outcome
}

// profileEmail looks for an unseen address associated with a person at company.
// The address is recorded in seen when found.
func (e *Extractor) profileEmail(ctx context.Context, person string, company types.Company, seen *SeenSet) string {
	q := fmt.Sprintf(`"%s" "%s" email contact`, person, company.Name)
	results, err := e.searcher.Search(ctx, search.Query{Text: q, Num: profileResults, Locale: e.opts.Locale})
	if err != nil {
		logging.Debug(ctx, "profile email search failed", zap.String("person", person), zap.Error(err))
		return ""
	}
	for _, r := range results {
		for _, email := range classify.ExtractEmails(r.Title + " " + r.Snippet) {
			if !belongsOrQualifies(email, company) || seen.Has(email) {
				continue
			}
			seen.Add(email)
			return email
		}
	}
	return ""
}

func (e *Extractor) jobPostingContacts(ctx context.Context, company types.Company, seen *SeenSet) MethodOutcome {
	var outcome MethodOutcome

	q := fmt.Sprintf(`"%s" job posting "contact" "apply" email`, company.Name)
	results, err := e.searcher.Search(ctx, search.Query{Text: q, Num: jobPostingResults, Locale: e.opts.Locale})
	if err != nil {
		outcome.Failure = failureFor(ctx, FailureSearchUnavailable)
		outcome.Err = err
		return outcome
	}
	for _, r := range results {
		outcome.Contacts = append(outcome.Contacts,
			contactsFromResult(r, company, seen, types.SourceJobPosting, types.ConfidenceMedium, JobPostingTitle)...)
	}
	return outcome
}

// contactsFromResult turns the qualifying, unseen addresses of one search hit into contacts.
// A non-empty title overrides the title found in the text.
func contactsFromResult(r search.Result, company types.Company, seen *SeenSet, source string, confidence types.Confidence, title string) []types.Contact {
	text := r.Title + " " + r.Snippet
	var out []types.Contact
	for _, email := range classify.ExtractEmails(text) {
		if !accept(email, company, seen) {
			continue
		}
		d := classify.DetailsNear(text, email)
		if title != "" {
			d.Title = title
		}
		out = append(out, types.Contact{
			Email:      email,
			Name:       d.Name,
			Title:      d.Title,
			Source:     source,
			SourceURL:  r.Link,
			Confidence: confidence,
		})
	}
	return out
}

func failureFor(ctx context.Context, reason FailureReason) FailureReason {
	if ctx.Err() != nil {
		return FailureCancelled
	}
	return reason
}
