package drm

import (
	"slices"

	"github.com/unsuns06/ReplayTV-Stremio-sub000/enums"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/models"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/util/codec"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/util/parser"

	"github.com/beevik/etree"
)

// ExtractProtection reads the default key id and the widevine and
// playready init data out of ContentProtection nodes. the first value
// found for each field wins.
func ExtractProtection(doc *models.ManifestDocument) *models.ProtectionInfo {
	info := &models.ProtectionInfo{}
	root := doc.Root()
	if root == nil {
		return info
	}
	for el := range parser.Elements(root) {
		if !parser.IsElement(el, "ContentProtection") {
			continue
		}
		scheme, _ := parser.AttrValue(el, "schemeIdUri")
		switch parser.ClassifyScheme(scheme) {
		case parser.SchemeCENC:
			if info.KeyID != "" {
				continue
			}
			if kid, ok := parser.AttrValue(el, "default_KID"); ok {
				if normalized, ok := NormalizeKeyID(kid); ok {
					info.KeyID = normalized
				}
			}
		case parser.SchemeWidevine:
			if info.WidevinePSSH == "" {
				info.WidevinePSSH = childPSSH(el)
			}
		case parser.SchemePlayReady:
			if info.PlayReadyPSSH == "" {
				info.PlayReadyPSSH = childPSSH(el)
			}
		}
	}
	return info
}

func childPSSH(el *etree.Element) string {
	for _, child := range el.ChildElements() {
		if parser.IsElement(child, "pssh") {
			return codec.StripWhitespace(child.Text())
		}
	}
	return ""
}

// Extractor gathers the protection info and pssh records of a manifest
// and makes both views agree on the widevine init data.
type Extractor struct {
	// Select picks the record for the key exchange. defaults to FirstWidevine.
	Select PsshSelector
}

func (e *Extractor) selector() PsshSelector {
	if e == nil || e.Select == nil {
		return FirstWidevine
	}
	return e.Select
}

// Extract returns the protection info and the full record set. when the
// walk found no widevine record but a widevine ContentProtection node
// carries init data, a drm_info record is synthesized from it.
func (e *Extractor) Extract(doc *models.ManifestDocument) (*models.ProtectionInfo, []models.PsshRecord) {
	info := ExtractProtection(doc)
	records := slices.Collect(ExtractPSSH(doc))

	if info.WidevinePSSH != "" && !slices.ContainsFunc(records, func(r models.PsshRecord) bool {
		return r.IsWidevine()
	}) {
		records = append(records, synthesizeRecord(info.WidevinePSSH))
	}
	return info, records
}

// SelectPSSH applies the configured selector.
func (e *Extractor) SelectPSSH(records []models.PsshRecord) (models.PsshRecord, bool) {
	return e.selector()(records)
}

func synthesizeRecord(pssh string) models.PsshRecord {
	record := models.PsshRecord{
		Source:   enums.PsshSourceDRMInfo,
		Parent:   "contentprotection",
		Base64:   pssh,
		SystemID: models.WidevineSystemID,
	}
	if data, err := codec.DecodeBase64(pssh); err == nil {
		record.Length = len(data)
		if info, err := codec.ParseBox(data); err == nil {
			record.Version = info.Version
			record.KeyIDs = info.KeyIDs
		}
	}
	return record
}

// FallbackKeyID finds a key id when no ContentProtection node carries a
// default_KID: the typed mpd schema first, then the kids of the pssh box.
func FallbackKeyID(doc *models.ManifestDocument, record models.PsshRecord) (string, bool) {
	if doc != nil && len(doc.Raw) > 0 {
		if kid, ok := parser.DefaultKID(doc.Raw); ok {
			if normalized, ok := NormalizeKeyID(kid); ok {
				return normalized, true
			}
		}
	}
	for _, kid := range record.KeyIDs {
		if normalized, ok := NormalizeKeyID(kid); ok {
			return normalized, true
		}
	}
	return "", false
}
