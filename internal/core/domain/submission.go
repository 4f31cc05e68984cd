package domain

type SubmissionState string

const (
	SubmissionIdle      SubmissionState = "idle"
	SubmissionUploading SubmissionState = "uploading"
	SubmissionInserting SubmissionState = "inserting"
	SubmissionDone      SubmissionState = "done"
	SubmissionFailed    SubmissionState = "failed"
)

// SubmissionResult is returned once a donation reached SubmissionDone.
type SubmissionResult struct {
	Donation  *Donation         `json:"donation"`
	State     SubmissionState   `json:"state"`
	Trace     []SubmissionState `json:"trace"`
	ObjectKey string            `json:"object_key,omitempty"`
	Redirect  string            `json:"redirect"`
}

type ClassifyOutcome struct {
	Result            ClassificationResult `json:"result"`
	Form              DonationForm         `json:"form"`
	ConfidencePercent int                  `json:"confidence_percent"`
}

type DonationHistory struct {
	Donations []Donation    `json:"donations"`
	Stats     DonationStats `json:"stats"`
}

type CollectionPointCard struct {
	CollectionPoint
	TypeLabel string `json:"type_label"`
	TypeColor string `json:"type_color"`
}

type CollectionPointMarker struct {
	Position [2]float64          `json:"position"`
	Point    CollectionPointCard `json:"point"`
}

type CollectionPointMap struct {
	Center  [2]float64              `json:"center"`
	Zoom    int                     `json:"zoom"`
	TileURL string                  `json:"tile_url"`
	Markers []CollectionPointMarker `json:"markers"`
}

// OrphanSweepReport summarises one orphan-upload sweep.
type OrphanSweepReport struct {
	Scanned int `json:"scanned"`
	Deleted int `json:"deleted"`
	Kept    int `json:"kept"`
	Failed  int `json:"failed"`
}
