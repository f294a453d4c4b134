package internal

type Strategy string

const (
	StrategyTable   Strategy = "table"
	StrategySection Strategy = "section"
	StrategyList    Strategy = "list"
	StrategyGrid    Strategy = "grid"
	StrategyHistory Strategy = "history"
	StrategyNone    Strategy = "none"
)

// Award is one nomination (or win) in one category of one ceremony.
// CeremonyNumber is derived from CeremonyYear when the record is built and
// never changes afterwards.
type Award struct {
	AwardName        string  `json:"award_name"`
	CeremonyYear     int     `json:"ceremony_year"`
	CeremonyNumber   int     `json:"ceremony_number"`
	Category         string  `json:"category"`
	MovieTitle       *string `json:"movie_title"`
	PersonName       *string `json:"person_name"`
	PersonRole       *string `json:"person_role"`
	Won              bool    `json:"won"`
	Nominated        bool    `json:"nominated"`
	AnnouncementDate *string `json:"announcement_date"`
	CeremonyDate     *string `json:"ceremony_date"`
	Notes            string  `json:"notes"`
}

// EnrichedAward is an Award plus the catalog links found for its film.
type EnrichedAward struct {
	Award
	MovieCatalogID  *int64  `json:"movie_catalog_id"`
	MovieExternalID *string `json:"movie_external_id"`
}

type StoredAward struct {
	ID int64
	EnrichedAward
}

// Film is the subset of a catalog record the matcher reads.
type Film struct {
	CatalogID     int64
	ExternalID    *string
	Title         string
	OriginalTitle string
	ReleaseDate   *string
	Overview      string
	Popularity    float64
	VoteAverage   float64
	VoteCount     int64
	RawJSON       string
}

type FetchedPage struct {
	AwardName    string
	CeremonyYear int
	URL          string
	Raw          []byte
}

type PageRow struct {
	ID           int
	AwardName    string
	CeremonyYear int
	URL          string
	Hash         string
	Status       string
	RawRef       string
	FetchedAt    string
}

type CategoryCount struct {
	CeremonyYear int
	Category     string
	Nominations  int
	Wins         int
	Linked       int
}
