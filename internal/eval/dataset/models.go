package dataset

// Record is one paper in an evaluation dataset: an identifier, the
// reference title, and the abstract submitted for analysis.
type Record struct {
	ID       string `json:"id" parquet:"id"`
	Title    string `json:"title" parquet:"title"`
	Abstract string `json:"abstract" parquet:"abstract"`
}
