package backend

type ombiResult struct {
	ID           int    `json:"id"`
	TheMovieDbID int    `json:"theMovieDbId"`
	Title        string `json:"title"`
	Name         string `json:"name"`
	ReleaseDate  string `json:"releaseDate"`
	FirstAired   string `json:"firstAired"`
	Available    bool   `json:"available"`
	Approved     bool   `json:"approved"`
	Requested    bool   `json:"requested"`
}

type ombiSeasonRequest struct {
	SeasonNumber int        `json:"seasonNumber"`
	Episodes     []struct{} `json:"episodes"`
}

type ombiTVRequestPayload struct {
	TvDbID       int                 `json:"tvDbId"`
	RequestAll   bool                `json:"requestAll"`
	LatestSeason bool                `json:"latestSeason"`
	Seasons      []ombiSeasonRequest `json:"seasons,omitempty"`
}
