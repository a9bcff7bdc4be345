package types

// CatalogExercise is a canonical exercise from the externally populated catalog.
type CatalogExercise struct {
	DBID             string   `json:"dbId"`
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	BodyPart         string   `json:"bodyPart"`
	Equipment        string   `json:"equipment"`
	Target           string   `json:"target"`
	GifURL           string   `json:"gifUrl"`
	SecondaryMuscles []string `json:"secondaryMuscles"`
	Instructions     []string `json:"instructions"`
}

// CatalogPage is one page of catalog search results.
type CatalogPage struct {
	Items []CatalogExercise `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// Catalog paging limits
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// NormalizePage clamps paging input to a 1-based page and a bounded limit.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}
