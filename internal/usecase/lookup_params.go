package usecase

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/stocklens/backend/internal/domain"
)

// Compiled patterns for lookup parameter validation
var (
	zipcodePattern    = regexp.MustCompile(`^\d{5}$`)
	skuPattern        = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	multiSpacePattern = regexp.MustCompile(`\s+`)
)

// productURLTemplates are the retailer product pages keyed by retailer.
// Retailers without a template link to "#".
var productURLTemplates = map[domain.Retailer]func(sku string) string{
	domain.RetailerTarget: func(sku string) string {
		return "https://www.target.com/p/urlkey/-/A-" + url.PathEscape(sku)
	},
	domain.RetailerBestBuy: func(sku string) string {
		escaped := url.PathEscape(sku)
		return "https://www.bestbuy.com/site/urlkey/" + escaped + ".p?skuId=" + url.QueryEscape(sku)
	},
}

// IsValidZipcode reports whether zip is exactly five digits
func IsValidZipcode(zip string) bool {
	return zipcodePattern.MatchString(zip)
}

// NormalizeLookupParams trims and validates a lookup request and returns a
// cleaned copy. The SKU is required and alphanumeric, an image must be an
// absolute http(s) URL, and a zipcode, when given, must be five digits.
// A missing zipcode is allowed so the caller can fall back to the session.
func NormalizeLookupParams(request *domain.LookupRequest) (*domain.LookupRequest, error) {
	if request == nil {
		return nil, domain.ErrInvalidRequest
	}

	retailer, err := domain.ParseRetailer(string(request.Retailer))
	if err != nil {
		return nil, err
	}

	out := &domain.LookupRequest{
		Retailer:  retailer,
		SKU:       strings.TrimSpace(request.SKU),
		Title:     multiSpacePattern.ReplaceAllString(strings.TrimSpace(request.Title), " "),
		Image:     strings.TrimSpace(request.Image),
		Zipcode:   strings.TrimSpace(request.Zipcode),
		SessionID: strings.TrimSpace(request.SessionID),
	}

	if out.SKU == "" {
		return nil, fmt.Errorf("%w: sku is required", domain.ErrInvalidRequest)
	}
	if !skuPattern.MatchString(out.SKU) {
		return nil, fmt.Errorf("%w: sku %q must be alphanumeric", domain.ErrInvalidRequest, out.SKU)
	}
	if out.Image != "" {
		if err := validateImageURL(out.Image); err != nil {
			return nil, err
		}
	}
	if out.Zipcode != "" && !IsValidZipcode(out.Zipcode) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidZipcode, out.Zipcode)
	}

	return out, nil
}

func validateImageURL(image string) error {
	u, err := url.Parse(image)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: image must be a valid URL", domain.ErrInvalidRequest)
	}
	return nil
}

// LookupPath builds the lookup route for a search identity.
// Format: "/lookup/{retailer}/{sku}?image=...&title=..."
func LookupPath(retailer domain.Retailer, identity domain.SearchIdentity) string {
	query := url.Values{
		"title": {identity.Title},
		"image": {identity.Image},
	}
	return fmt.Sprintf("/lookup/%s/%s?%s", retailer, url.PathEscape(identity.SKU), query.Encode())
}

// ProductURL returns the retailer's product page for a SKU, or "#" when the
// retailer has no known product page format.
func ProductURL(retailer domain.Retailer, sku string) string {
	if build, ok := productURLTemplates[retailer]; ok && sku != "" {
		return build(sku)
	}
	return "#"
}
