package pdf

// PageConfig assigns a corner to a single 1-indexed page.
type PageConfig struct {
	PageNumber int      `json:"pageNumber"`
	Position   Position `json:"position"`
}

// Mode decides which corner, if any, a page gets.
// A false result means the page is skipped.
type Mode interface {
	PositionFor(page int) (Position, bool)
}

// Uniform stamps every page at the same corner.
type Uniform struct {
	Position Position
}

func (u Uniform) PositionFor(int) (Position, bool) {
	return u.Position, true
}

// PerPage stamps only the configured pages.
// When a page number appears more than once, the first entry wins.
type PerPage struct {
	Configs []PageConfig

	index map[int]Position
}

// NewPerPage builds a PerPage mode with a precomputed page lookup.
func NewPerPage(configs []PageConfig) PerPage {
	index := make(map[int]Position, len(configs))
	for _, cfg := range configs {
		if _, seen := index[cfg.PageNumber]; !seen {
			index[cfg.PageNumber] = cfg.Position
		}
	}
	return PerPage{Configs: configs, index: index}
}

func (m PerPage) PositionFor(page int) (Position, bool) {
	if m.index != nil {
		pos, ok := m.index[page]
		return pos, ok
	}
	for _, cfg := range m.Configs {
		if cfg.PageNumber == page {
			return cfg.Position, true
		}
	}
	return "", false
}

// ValidateMode rejects modes carrying unknown positions or page numbers
// below 1.
func ValidateMode(mode Mode) error {
	switch m := mode.(type) {
	case nil:
		return invalidParam("mode", "no placement mode given")
	case Uniform:
		if !m.Position.Valid() {
			return invalidParam("position", "%q is not a supported position", m.Position)
		}
	case *Uniform:
		return ValidateMode(*m)
	case PerPage:
		pages := make([]int, 0, len(m.Configs))
		for _, cfg := range m.Configs {
			if !cfg.Position.Valid() {
				return invalidParam("position", "%q is not a supported position for page %d", cfg.Position, cfg.PageNumber)
			}
			pages = append(pages, cfg.PageNumber)
		}
		if err := ValidatePageNumbers(pages, 0); err != nil {
			return invalidParam("pageConfigs", "%v", err)
		}
	case *PerPage:
		return ValidateMode(*m)
	}
	return nil
}
