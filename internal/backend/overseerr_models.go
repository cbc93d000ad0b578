package backend

// overseerrSearchResponse is the /api/v1/search response envelope.
type overseerrSearchResponse struct {
	Page         int               `json:"page"`
	TotalPages   int               `json:"totalPages"`
	TotalResults int               `json:"totalResults"`
	Results      []overseerrResult `json:"results"`
}

// overseerrResult is one raw search hit. Movies carry title/releaseDate,
// TV carries name/firstAirDate; older API versions use "type" instead of
// "mediaType".
type overseerrResult struct {
	ID           int                `json:"id"`
	MediaType    string             `json:"mediaType"`
	Type         string             `json:"type"`
	Title        string             `json:"title"`
	Name         string             `json:"name"`
	ReleaseDate  string             `json:"releaseDate"`
	FirstAirDate string             `json:"firstAirDate"`
	MediaInfo    overseerrMediaInfo `json:"mediaInfo"`
}

// overseerrMediaInfo carries library availability for a search hit.
// Status codes: 1=unknown 2=pending 3=processing 4=partially available
// 5=available 6=deleted.
type overseerrMediaInfo struct {
	Status   int                `json:"status"`
	Requests []struct{ ID int } `json:"requests"`
	Seasons  []overseerrSeason  `json:"seasons"`
}

type overseerrSeason struct {
	SeasonNumber     int `json:"seasonNumber"`
	EpisodeCount     int `json:"episodeCount"`
	EpisodeFileCount int `json:"episodeFileCount"`
}

// overseerrRequestPayload is the /api/v1/request body. Seasons is either
// a list of season numbers or the literal string "all".
type overseerrRequestPayload struct {
	MediaID   int    `json:"mediaId"`
	MediaType string `json:"mediaType"`
	Seasons   any    `json:"seasons,omitempty"`
}

// overseerrDetailsResponse is the subset of /api/v1/{movie|tv}/{id} we
// read for advisory detail enrichment.
type overseerrDetailsResponse struct {
	Credits struct {
		Cast []struct {
			Name string `json:"name"`
		} `json:"cast"`
		Crew []struct {
			Name string `json:"name"`
			Job  string `json:"job"`
		} `json:"crew"`
	} `json:"credits"`
	Genres []struct {
		Name string `json:"name"`
	} `json:"genres"`
}
