package models

import (
	"github.com/unsuns06/ReplayTV-Stremio-sub000/enums"

	"github.com/guregu/null/v6"
)

type AssetDescriptor struct {
	Type    string        `json:"type"`
	Quality enums.Quality `json:"quality"`
	URL     string        `json:"url"`
}

type FormatChoice struct {
	Type        enums.FormatType `json:"type"`
	AssetType   string           `json:"asset_type"`
	Quality     enums.Quality    `json:"quality"`
	URL         string           `json:"url"`
	DRMRequired bool             `json:"drm_required"`
}

type ResolvedStream struct {
	URL            string            `json:"url"`
	ManifestType   enums.FormatType  `json:"manifest_type"`
	Headers        map[string]string `json:"headers,omitempty"`
	LicenseURL     null.String       `json:"license_url"`
	LicenseHeaders map[string]string `json:"license_headers,omitempty"`
	ExternalURL    null.String       `json:"external_url"`
	Status         null.String       `json:"status"`

	// compatibility-rewritten manifest, for callers serving it themselves
	Manifest null.String `json:"-"`

	Outcome enums.Outcome `json:"outcome"`
}

type RemuxJob struct {
	URL            string `json:"url"`
	SaveName       string `json:"save_name"`
	Key            string `json:"key"`
	SelectVideo    string `json:"select_video"`
	SelectAudio    string `json:"select_audio"`
	SelectSubtitle string `json:"select_subtitle"`
	Format         string `json:"format"`
	LogLevel       string `json:"log_level"`
	BinaryMerge    bool   `json:"binary_merge"`
}
