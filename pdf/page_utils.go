package pdf

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var whitespace = regexp.MustCompile(`\s`)

// ParsePageSpecifier parses a page specification string and returns the
// sorted, de-duplicated page numbers it names.
// Supports formats: "1", "1,3", "1-5", "1,3-5,7"
func ParsePageSpecifier(pages string) ([]int, error) {
	pages = whitespace.ReplaceAllString(pages, "")
	if pages == "" {
		return nil, fmt.Errorf("empty page specification")
	}

	var pageList []int
	for _, part := range strings.Split(pages, ",") {
		if part == "" {
			return nil, fmt.Errorf("empty entry in page specification %q", pages)
		}

		lo, hi, isRange := strings.Cut(part, "-")
		start, err := strconv.Atoi(lo)
		if err != nil {
			return nil, fmt.Errorf("invalid page number: %s", lo)
		}
		end := start
		if isRange {
			if end, err = strconv.Atoi(hi); err != nil {
				return nil, fmt.Errorf("invalid end page: %s", hi)
			}
			if start > end {
				return nil, fmt.Errorf("invalid range: start > end (%d > %d)", start, end)
			}
		}

		if end > MaxPageNumber {
			return nil, fmt.Errorf("page %d exceeds the maximum page number %d", end, MaxPageNumber)
		}

		for i := start; i <= end; i++ {
			pageList = append(pageList, i)
		}
	}

	sort.Ints(pageList)
	deduped := make([]int, 0, len(pageList))
	for i, page := range pageList {
		if i == 0 || page != pageList[i-1] {
			deduped = append(deduped, page)
		}
	}

	return deduped, nil
}

// ValidatePageNumbers checks that all page numbers are positive and, when
// totalPages > 0, not beyond the last page.
func ValidatePageNumbers(pages []int, totalPages int) error {
	for _, page := range pages {
		if page < 1 {
			return fmt.Errorf("page numbers must be positive, got %d", page)
		}
		if totalPages > 0 && page > totalPages {
			return fmt.Errorf("page %d exceeds total pages (%d)", page, totalPages)
		}
	}
	return nil
}

// PageConfigsForSpecifier expands a page specifier into one PageConfig per
// page, all anchored at pos.
func PageConfigsForSpecifier(pages string, pos Position) ([]PageConfig, error) {
	numbers, err := ParsePageSpecifier(pages)
	if err != nil {
		return nil, invalidParam("pages", "%v", err)
	}
	if err := ValidatePageNumbers(numbers, 0); err != nil {
		return nil, invalidParam("pages", "%v", err)
	}

	configs := make([]PageConfig, len(numbers))
	for i, n := range numbers {
		configs[i] = PageConfig{PageNumber: n, Position: pos}
	}
	return configs, nil
}
