package types

type OutputOk struct {
	Ok bool `json:"ok"`
}

type OutputToken struct {
	Ok    bool   `json:"ok"`
	Token string `json:"token"`
}

type OutputDecision struct {
	Ok       bool           `json:"ok"`
	DocID    string         `json:"docId"`
	Status   DocumentStatus `json:"status"`
	Accepted int            `json:"accepted"`
	Required int            `json:"required"`
}

type OutputSession struct {
	Ok            bool   `json:"ok"`
	Email         string `json:"email"`
	WalletAddress string `json:"wallet"`
	Exp           int64  `json:"exp"`
	MsLeft        int64  `json:"msLeft"`
}

type OutputEmailCheck struct {
	Ok             bool   `json:"ok"`
	Found          bool   `json:"found"`
	Match          bool   `json:"match"`
	ExpectedWallet string `json:"expectedWallet,omitempty"`
}

type OutputDocumentCreated struct {
	Ok   bool   `json:"ok"`
	ID   string `json:"id"`
	Hash string `json:"hash"`
}

type OutputDocumentMeta struct {
	Ok   bool   `json:"ok"`
	Hash string `json:"hash"`
}

// DocumentListItem is a metadata-only view of a document, the binary content
// is never included in listings
type DocumentListItem struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Status       DocumentStatus `json:"status"`
	UploadedAt   int64          `json:"uploadedAt"`
	SignedByMe   bool           `json:"signedByMe"`
	RejectedByMe bool           `json:"rejectedByMe"`
}

type OutputDocumentList struct {
	Ok   bool               `json:"ok"`
	Docs []DocumentListItem `json:"docs"`
}
