package receipt

// Receipt is everything the receipt template needs for one application.
type Receipt struct {
	RecordID    string           `json:"record_id"`
	GrantType   string           `json:"grant_type"`
	DateTime    string           `json:"datetime"`
	LocalTime   string           `json:"local_time"`
	Name        string           `json:"name"`
	AvatarURL   string           `json:"avatar_url"`
	City        string           `json:"city"`
	State       string           `json:"state"`
	Country     string           `json:"country"`
	Age         string           `json:"age"`
	QA          []QuestionAnswer `json:"q_a"`
	ProjectInfo ProjectInfo      `json:"project_info"`
}

type QuestionAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type ProjectInfo struct {
	Name     string     `json:"name"`
	ImageURL string     `json:"image_url"`
	QRCodes  []QRTarget `json:"qr_codes"`
}

// QRTarget is a labelled link printed as a QR code.
type QRTarget struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}
