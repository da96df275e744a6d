package document

import "time"

// Record is the metadata kept for one encrypted document. The ciphertext
// itself lives in a BlobStore under StoredFilename.
type Record struct {
	ID               string     `json:"id"`
	Owner            string     `json:"owner"`
	OriginalFilename string     `json:"originalFilename"`
	StoredFilename   string     `json:"-"`
	MimeType         string     `json:"mimeType"`
	Size             int64      `json:"size"`
	ExpiryDate       *time.Time `json:"expiryDate,omitempty"`
	WrappedKey       []byte     `json:"-"`
	AuthTag          []byte     `json:"-"`

	// BoundAD marks records whose tag also authenticates the record ID.
	BoundAD   bool      `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Activity is an audit event emitted after a successful change.
type Activity struct {
	Owner     string    `json:"owner"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ActivityType is the Type of every event the service emits.
const ActivityType = "document"

// UploadInput carries a new document.
type UploadInput struct {
	Owner      string     `json:"owner" validate:"required,max=128"`
	Filename   string     `json:"filename" validate:"required,max=255"`
	MimeType   string     `json:"mimeType" validate:"required"`
	Data       []byte     `json:"-"`
	ExpiryDate *time.Time `json:"expiryDate"`
}

// Download is a decrypted document.
type Download struct {
	Record *Record
	Data   []byte
}

// VerifyFailure names a document that could not be decrypted.
type VerifyFailure struct {
	ID               string `json:"id"`
	OriginalFilename string `json:"originalFilename"`
}

// VerifyReport summarises a Verify run.
type VerifyReport struct {
	Total    int             `json:"total"`
	Verified int             `json:"verified"`
	Failed   []VerifyFailure `json:"failed"`
}
