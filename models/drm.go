package models

import "github.com/unsuns06/ReplayTV-Stremio-sub000/enums"

const (
	WidevineSystemID  = "edef8ba9-79d6-4ace-a3c8-27dcd51d21ed"
	PlayReadySystemID = "9a04f079-9840-4286-ab92-e65be0885f95"
)

type PsshRecord struct {
	Source   enums.PsshSource `json:"source"`
	Parent   string           `json:"parent"`
	Base64   string           `json:"base64"`
	Length   int              `json:"length"`
	SystemID string           `json:"system_id,omitempty"` // empty when the payload is shorter than 28 bytes
	Version  int              `json:"version"`
	KeyIDs   []string         `json:"key_ids,omitempty"`
}

func (record *PsshRecord) IsWidevine() bool {
	return record.SystemID == WidevineSystemID
}

func (record *PsshRecord) IsPlayReady() bool {
	return record.SystemID == PlayReadySystemID
}

// ProtectionInfo holds what ContentProtection nodes tell about a manifest.
// empty fields are absent; KeyID is always canonical lowercase hex.
type ProtectionInfo struct {
	KeyID         string `json:"key_id,omitempty"`
	WidevinePSSH  string `json:"widevine_pssh,omitempty"`
	PlayReadyPSSH string `json:"playready_pssh,omitempty"`
}

func (info *ProtectionInfo) IsEmpty() bool {
	return info == nil || (info.KeyID == "" && info.WidevinePSSH == "" && info.PlayReadyPSSH == "")
}

// LicenseToken is an opaque, short lived authorization scoped
// to one content and one account.
type LicenseToken struct {
	Value     string
	ContentID string
}

type DecryptionKey struct {
	Key   string `json:"key"`              // 32 lowercase hex chars
	KeyID string `json:"key_id,omitempty"` // set when the key was matched against a key id
}
