// Package drm reads the protection signalling of a manifest and turns it
// into a content key through an external key exchange service.
package drm

import (
	"iter"
	"strings"

	"github.com/unsuns06/ReplayTV-Stremio-sub000/enums"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/models"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/util/codec"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/util/parser"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// PsshSelector picks the record used for the key exchange.
type PsshSelector func(records []models.PsshRecord) (models.PsshRecord, bool)

// FirstWidevine returns the first widevine record in document order.
func FirstWidevine(records []models.PsshRecord) (models.PsshRecord, bool) {
	for _, record := range records {
		if record.IsWidevine() {
			return record, true
		}
	}
	return models.PsshRecord{}, false
}

// ExtractPSSH lazily yields every decodable pssh payload of the manifest,
// attributes of an element before its text. a payload that is not valid
// base64 is skipped without stopping the walk.
func ExtractPSSH(doc *models.ManifestDocument) iter.Seq[models.PsshRecord] {
	return func(yield func(models.PsshRecord) bool) {
		root := doc.Root()
		if root == nil {
			return
		}
		for el := range parser.Elements(root) {
			parent := parentName(el)
			for _, attr := range el.Attr {
				if attr.Space == "xmlns" || parser.LocalName(attr.FullKey()) != "pssh" {
					continue
				}
				record, ok := decodeRecord(enums.PsshSourceAttribute, parser.LocalName(el.FullTag()), attr.Value)
				if ok && !yield(record) {
					return
				}
			}
			if !parser.IsElement(el, "pssh") {
				continue
			}
			text := strings.TrimSpace(el.Text())
			if text == "" {
				continue
			}
			record, ok := decodeRecord(enums.PsshSourceElement, parent, text)
			if ok && !yield(record) {
				return
			}
		}
	}
}

func parentName(el *etree.Element) string {
	if parent := el.Parent(); parent != nil {
		return parser.LocalName(parent.FullTag())
	}
	return ""
}

func decodeRecord(source enums.PsshSource, parent string, text string) (models.PsshRecord, bool) {
	data, err := codec.DecodeBase64(text)
	if err != nil {
		zap.S().Debugf("skipping %s pssh under %s: %v", source, parent, err)
		return models.PsshRecord{}, false
	}
	record := models.PsshRecord{
		Source: source,
		Parent: parent,
		Base64: codec.StripWhitespace(text),
		Length: len(data),
	}
	if systemID, ok := codec.SystemID(data); ok {
		record.SystemID = systemID
	}
	if info, err := codec.ParseBox(data); err == nil {
		record.Version = info.Version
		record.KeyIDs = info.KeyIDs
	}
	return record, true
}
