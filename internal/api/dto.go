package api

import (
	"github.com/starford/leit/internal/docservice"
	"github.com/starford/leit/internal/index"
)

// Domain types exposed directly in responses.
type (
	SearchHit        = docservice.SearchHit
	DocumentDetail   = docservice.DocumentDetail
	DocumentListItem = docservice.DocumentListItem
	StatusResponse   = docservice.Status
)

// SearchResponse wraps search results. Notice is set when the query was not
// searchable (too short) and the result list is intentionally empty.
type SearchResponse struct {
	Query   string      `json:"query"`
	Results []SearchHit `json:"results"`
	Notice  string      `json:"notice,omitempty"`
}

// DocumentListResponse wraps paginated document listings.
type DocumentListResponse struct {
	Documents []DocumentListItem `json:"documents"`
	Total     int                `json:"total"`
}

// ExclusionsRequest is the request body for replacing exclusion rules.
type ExclusionsRequest struct {
	Folders []string `json:"folders"`
	Tags    []string `json:"tags"`
}

// ReindexResponse wraps rebuild statistics. Cancelled is true when the run
// was interrupted and the stats cover only the processed part.
type ReindexResponse struct {
	Stats     index.RebuildStats `json:"stats"`
	Cancelled bool               `json:"cancelled,omitempty"`
}
