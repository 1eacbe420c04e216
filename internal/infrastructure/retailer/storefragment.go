package retailer

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	errEmptyFragment      = errors.New("fragment has no element")
	errUnparsableQuantity = errors.New("quantity text has no digits")

	digitRunRegex = regexp.MustCompile(`\d+`)
)

// StoreDetails is the store metadata carried by a store info-window fragment
type StoreDetails struct {
	ID      string
	Phone   string
	Address string
	City    string
	State   string
	ZipCode string
}

// ParseStoreFragment extracts store metadata from a markup fragment shaped like
//
//	<div data-store-id="...">
//	  <a class="storelocator-phone" href="tel:...">...</a>
//	  <address>
//	    street
//	    city, state
//	  </address>
//	  <span class="storeData" data-city="..." data-stateprovince="..." data-postalcode="..."></span>
//	</div>
//
// Any missing element or attribute is an error.
func ParseStoreFragment(fragment string) (StoreDetails, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return StoreDetails{}, fmt.Errorf("parse fragment: %w", err)
	}

	details := doc.Find("body").Children().First()
	if details.Length() == 0 {
		return StoreDetails{}, errEmptyFragment
	}

	var out StoreDetails
	if out.ID, err = requiredAttr(details, "data-store-id"); err != nil {
		return StoreDetails{}, err
	}

	phone := details.Find("a.storelocator-phone").First()
	if phone.Length() == 0 {
		return StoreDetails{}, fmt.Errorf("missing a.storelocator-phone")
	}
	href, err := requiredAttr(phone, "href")
	if err != nil {
		return StoreDetails{}, err
	}
	out.Phone = strings.TrimPrefix(strings.TrimSpace(href), "tel:")

	address := details.Find("address").First()
	if address.Length() == 0 {
		return StoreDetails{}, fmt.Errorf("missing address element")
	}
	out.Address = firstNonBlankLine(address.Text())

	storeData := details.Find("span.storeData").First()
	if storeData.Length() == 0 {
		return StoreDetails{}, fmt.Errorf("missing span.storeData")
	}
	if out.State, err = requiredAttr(storeData, "data-stateprovince"); err != nil {
		return StoreDetails{}, err
	}
	if out.City, err = requiredAttr(storeData, "data-city"); err != nil {
		return StoreDetails{}, err
	}
	if out.ZipCode, err = requiredAttr(storeData, "data-postalcode"); err != nil {
		return StoreDetails{}, err
	}

	return out, nil
}

// ParseStoreQuantities maps each div.store-details in a results fragment to
// the text of its span.store-product-count. Stores without a count element
// are left out.
func ParseStoreQuantities(fragment string) (map[string]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, fmt.Errorf("parse results fragment: %w", err)
	}

	quantities := make(map[string]string)
	doc.Find("div.store-details[data-store-id]").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("data-store-id")
		count := s.Find("span.store-product-count").First()
		if id == "" || count.Length() == 0 {
			return
		}
		if _, seen := quantities[id]; !seen {
			quantities[id] = count.Text()
		}
	})
	return quantities, nil
}

// ParseQuantityText reads a store count label. "In Stock" means 1; otherwise
// the first run of digits is the count ("0 units" is 0, "1 of 2" is 1).
func ParseQuantityText(text string) (int, error) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "in stock" {
		return 1, nil
	}

	digits := digitRunRegex.FindString(normalized)
	if digits == "" {
		return 0, fmt.Errorf("%w: %q", errUnparsableQuantity, text)
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("quantity %q: %w", text, err)
	}
	return n, nil
}

func requiredAttr(s *goquery.Selection, name string) (string, error) {
	v, ok := s.Attr(name)
	if !ok {
		return "", fmt.Errorf("missing attribute %s", name)
	}
	return strings.TrimSpace(v), nil
}

func firstNonBlankLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
