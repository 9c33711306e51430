package parser

import (
	"iter"
	"net/url"
	"strings"

	"github.com/unsuns06/ReplayTV-Stremio-sub000/models"

	"github.com/beevik/etree"
	"github.com/pkg/errors"
)

// ParseManifest builds the generic tree of an xml manifest. namespaces are
// not resolved: broadcasters prefix the same elements inconsistently, so
// every lookup in this package goes through LocalName.
func ParseManifest(raw []byte, sourceURL string) (*models.ManifestDocument, error) {
	tree := etree.NewDocument()
	tree.ReadSettings.Permissive = true
	if err := tree.ReadFromBytes(raw); err != nil {
		return nil, errors.Wrap(err, "failed parsing manifest xml")
	}
	if tree.Root() == nil {
		return nil, errors.New("manifest has no root element")
	}
	doc := &models.ManifestDocument{
		Raw:       raw,
		Tree:      tree,
		SourceURL: sourceURL,
		BaseURL:   directoryURL(sourceURL),
	}
	if baseURL := FirstChild(tree.Root(), "BaseURL"); baseURL != nil {
		doc.BaseURL = resolveReference(doc.BaseURL, strings.TrimSpace(baseURL.Text()))
	}
	return doc, nil
}

// LocalName strips any namespace prefix ("cenc:pssh") or clark
// notation ("{urn:mpeg:cenc:2013}pssh") and lowercases the rest.
func LocalName(name string) string {
	if i := strings.LastIndexAny(name, ":}"); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToLower(name)
}

func IsElement(el *etree.Element, local string) bool {
	return el != nil && LocalName(el.FullTag()) == strings.ToLower(local)
}

// Elements yields root and all of its descendants in document order.
func Elements(root *etree.Element) iter.Seq[*etree.Element] {
	return func(yield func(*etree.Element) bool) {
		walk(root, yield)
	}
}

func walk(el *etree.Element, yield func(*etree.Element) bool) bool {
	if el == nil {
		return true
	}
	if !yield(el) {
		return false
	}
	for _, child := range el.ChildElements() {
		if !walk(child, yield) {
			return false
		}
	}
	return true
}

// AttrValue looks an attribute up by local name, case-insensitively.
func AttrValue(el *etree.Element, local string) (string, bool) {
	local = strings.ToLower(local)
	for _, attr := range el.Attr {
		if attr.Space == "xmlns" || (attr.Space == "" && attr.Key == "xmlns") {
			continue
		}
		if LocalName(attr.FullKey()) == local {
			return attr.Value, true
		}
	}
	return "", false
}

func FirstChild(el *etree.Element, local string) *etree.Element {
	for _, child := range el.ChildElements() {
		if IsElement(child, local) {
			return child
		}
	}
	return nil
}

func directoryURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	parsed.RawQuery = ""
	parsed.Fragment = ""
	if i := strings.LastIndex(parsed.Path, "/"); i >= 0 {
		parsed.Path = parsed.Path[:i+1]
	}
	parsed.RawPath = ""
	return parsed.String()
}

func resolveReference(base string, ref string) string {
	if ref == "" {
		return base
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return base
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return base
	}
	return baseURL.ResolveReference(refURL).String()
}
