// Package companies holds the outreach target list and the per-company facts
// used to personalise emails. Both are data, loaded from an embedded default
// document or from a JSON file with the same shape.
package companies

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/jonathan/outreach-agent/internal/schemas"
	"github.com/jonathan/outreach-agent/internal/types"
)

//go:embed defaults.json
var defaultDocument []byte

// FallbackProfile is returned for companies without a known profile.
var FallbackProfile = types.CompanyProfile{
	Business: "Technology and financial services",
	Culture:  "Innovation-focused",
}

// Directory is an ordered target list plus a profile lookup table.
type Directory struct {
	companies []types.Company
	profiles  map[string]types.CompanyProfile
}

type document struct {
	Companies []types.Company                 `json:"companies"`
	Profiles  map[string]types.CompanyProfile `json:"profiles"`
}

// Default returns the built-in directory.
func Default() *Directory {
	dir, err := Parse(defaultDocument)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in company directory: %v", err))
	}
	return dir
}

// Load reads a directory from a JSON file.
func Load(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read companies file %s: %w", path, err)
	}
	dir, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid companies file %s: %w", path, err)
	}
	return dir, nil
}

// Parse validates and decodes a directory document. Missing domains are derived
// from the website; duplicate domains are rejected.
func Parse(data []byte) (*Directory, error) {
	if err := schemas.ValidateTargets(data); err != nil {
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse companies JSON: %w", err)
	}

	seen := make(map[string]string, len(doc.Companies))
	for i := range doc.Companies {
		c := &doc.Companies[i]
		c.Website = strings.TrimRight(c.Website, "/")
		if c.Domain == "" {
			domain, err := DomainFromWebsite(c.Website)
			if err != nil {
				return nil, fmt.Errorf("company %q: %w", c.Name, err)
			}
			c.Domain = domain
		}
		c.Domain = strings.ToLower(c.Domain)
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("company %q: %w", c.Name, err)
		}
		if prev, dup := seen[c.Domain]; dup {
			return nil, fmt.Errorf("companies %q and %q share domain %s", prev, c.Name, c.Domain)
		}
		seen[c.Domain] = c.Name
	}

	profiles := make(map[string]types.CompanyProfile, len(doc.Profiles))
	for name, p := range doc.Profiles {
		profiles[strings.ToLower(name)] = p
	}
	return &Directory{companies: doc.Companies, profiles: profiles}, nil
}

// DomainFromWebsite returns the registrable domain of a website URL.
func DomainFromWebsite(website string) (string, error) {
	u, err := url.Parse(website)
	if err != nil || u.Hostname() == "" {
		return "", fmt.Errorf("cannot derive domain from website %q", website)
	}
	host := strings.ToLower(u.Hostname())
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return "", fmt.Errorf("cannot derive domain from host %q: %w", host, err)
	}
	return domain, nil
}

// Companies returns the first max companies, or all when max <= 0.
func (d *Directory) Companies(max int) []types.Company {
	out := d.companies
	if max > 0 && max < len(out) {
		out = out[:max]
	}
	return append([]types.Company(nil), out...)
}

// Len returns the number of companies.
func (d *Directory) Len() int {
	return len(d.companies)
}

// Profile returns the profile for a company name, or FallbackProfile.
func (d *Directory) Profile(company string) types.CompanyProfile {
	if p, ok := d.profiles[strings.ToLower(strings.TrimSpace(company))]; ok {
		return p
	}
	return FallbackProfile
}
