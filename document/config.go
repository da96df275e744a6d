package document

import (
	"mime"
	"strings"
)

// Config controls upload limits and verification.
type Config struct {
	MaxSize            int64    `json:"max_size" mapstructure:"max_size" default:"10485760" validate:"gt=0"`
	AllowedTypes       []string `json:"allowed_types" mapstructure:"allowed_types" default:"application/pdf,image/png,image/jpeg,application/zip,text/plain" validate:"min=1"`
	BindAssociatedData bool     `json:"bind_associated_data" mapstructure:"bind_associated_data"`
	VerifyWorkers      int      `json:"verify_workers" mapstructure:"verify_workers" default:"4" validate:"gte=1,lte=256"`
}

// allowed reports whether the media type of mimeType is in the allow-list.
// Parameters such as charset are ignored.
func (c *Config) allowed(mimeType string) (string, bool) {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return "", false
	}
	for _, t := range c.AllowedTypes {
		if strings.EqualFold(strings.TrimSpace(t), mediaType) {
			return mediaType, true
		}
	}
	return mediaType, false
}
