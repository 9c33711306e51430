package models

import (
	"github.com/beevik/etree"
)

// ManifestDocument is a fetched manifest along with its parsed tree.
// it only lives for the duration of one resolution.
type ManifestDocument struct {
	Raw       []byte
	Tree      *etree.Document
	SourceURL string
	BaseURL   string
}

func (doc *ManifestDocument) Root() *etree.Element {
	if doc == nil || doc.Tree == nil {
		return nil
	}
	return doc.Tree.Root()
}

type ManifestSummary struct {
	Type       string            `json:"type"`
	IsLive     bool              `json:"is_live"`
	Duration   int64             `json:"duration"`
	DefaultKID string            `json:"default_kid,omitempty"`
	Protected  bool              `json:"protected"`
	Variants   []*VariantSummary `json:"variants"`
}

type VariantSummary struct {
	ID         string `json:"id"`
	MediaType  string `json:"media_type"`
	VideoCodec string `json:"video_codec,omitempty"`
	AudioCodec string `json:"audio_codec,omitempty"`
	Bandwidth  int64  `json:"bandwidth"`
	Width      int64  `json:"width,omitempty"`
	Height     int64  `json:"height,omitempty"`
	URL        string `json:"url,omitempty"`
	Protected  bool   `json:"protected"`
}
