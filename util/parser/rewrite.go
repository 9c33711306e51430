package parser

import (
	"net/url"
	"slices"
	"strings"

	"github.com/beevik/etree"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	mp4ProtectionMarker = "mp4protection"
	WidevineSchemeGUID  = "edef8ba9-79d6-4ace-a3c8-27dcd51d21ed"
	PlayReadySchemeGUID = "9a04f079-9840-4286-ab92-e65be0885f95"
)

// SchemeKind tells which DRM system a ContentProtection schemeIdUri names.
type SchemeKind int

const (
	SchemeUnknown SchemeKind = iota
	SchemeCENC
	SchemeWidevine
	SchemePlayReady
)

func ClassifyScheme(schemeIDURI string) SchemeKind {
	scheme := strings.ToLower(schemeIDURI)
	switch {
	case strings.Contains(scheme, mp4ProtectionMarker):
		return SchemeCENC
	case strings.Contains(scheme, WidevineSchemeGUID):
		return SchemeWidevine
	case strings.Contains(scheme, PlayReadySchemeGUID):
		return SchemePlayReady
	default:
		return SchemeUnknown
	}
}

// RewriteManifest simplifies ContentProtection subtrees that crash naive
// downstream parsers and makes SegmentTemplate urls absolute. it is a best
// effort shim: on any failure the original text comes back untouched.
func RewriteManifest(text string, manifestURL string) (rewritten string) {
	defer func() {
		if r := recover(); r != nil {
			zap.S().Warnf("manifest rewrite panicked, keeping original: %v", r)
			rewritten = text
		}
	}()

	out, err := rewriteManifest(text, manifestURL)
	if err != nil {
		zap.S().Warnf("manifest rewrite failed, keeping original: %v", err)
		return text
	}
	return out
}

func rewriteManifest(text string, manifestURL string) (string, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = true
	if err := doc.ReadFromString(text); err != nil {
		return "", errors.Wrap(err, "failed parsing manifest")
	}
	root := doc.Root()
	if root == nil {
		return "", errors.New("manifest has no root element")
	}
	if _, err := url.Parse(manifestURL); err != nil {
		return "", errors.Wrap(err, "invalid manifest url")
	}

	// collect first, the rewrite mutates the tree
	elements := slices.Collect(Elements(root))
	for _, el := range elements {
		switch {
		case IsElement(el, "ContentProtection"):
			rewriteContentProtection(el)
		case IsElement(el, "SegmentTemplate"):
			absolutizeSegmentTemplate(el, manifestURL)
		}
	}
	pruneNamespaceDeclarations(root)

	return doc.WriteToString()
}

func rewriteContentProtection(el *etree.Element) {
	scheme, _ := AttrValue(el, "schemeIdUri")
	switch ClassifyScheme(scheme) {
	case SchemeCENC:
		clearChildren(el)
	case SchemeWidevine:
		pssh := FirstChild(el, "pssh")
		clearChildren(el)
		if pssh != nil {
			pssh.SetText(strings.TrimSpace(pssh.Text()))
			el.AddChild(pssh)
		}
	case SchemePlayReady:
		clearChildren(el)
		// minimal marker: only the scheme and its value survive
		kept := el.Attr[:0]
		for _, attr := range el.Attr {
			key := LocalName(attr.FullKey())
			if attr.Space == "xmlns" {
				continue
			}
			if key == "schemeiduri" || key == "value" {
				kept = append(kept, attr)
			}
		}
		el.Attr = kept
	}
}

func clearChildren(el *etree.Element) {
	for i := len(el.Child) - 1; i >= 0; i-- {
		el.RemoveChildAt(i)
	}
}

func absolutizeSegmentTemplate(el *etree.Element, manifestURL string) {
	base := effectiveBaseURL(el, manifestURL)
	for i := range el.Attr {
		attr := &el.Attr[i]
		switch LocalName(attr.FullKey()) {
		case "initialization", "media":
			attr.Value = absolutizeTemplate(base, attr.Value)
		}
	}
}

// effectiveBaseURL folds the BaseURL elements in scope of el over the
// manifest url, outermost first.
func effectiveBaseURL(el *etree.Element, manifestURL string) string {
	var chain []string
	for parent := el.Parent(); parent != nil; parent = parent.Parent() {
		if baseURL := FirstChild(parent, "BaseURL"); baseURL != nil {
			chain = append(chain, strings.TrimSpace(baseURL.Text()))
		}
	}
	base := manifestURL
	for i := len(chain) - 1; i >= 0; i-- {
		base = resolveReference(base, chain[i])
	}
	return base
}

// absolutizeTemplate joins template urls by hand: they carry $Number%05d$
// style identifiers that url.Parse rejects as bad escapes.
func absolutizeTemplate(base string, value string) string {
	lower := strings.ToLower(value)
	if value == "" || strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return value
	}
	baseURL, err := url.Parse(base)
	if err != nil || baseURL.Host == "" {
		return value
	}
	switch {
	case strings.HasPrefix(value, "//"):
		return baseURL.Scheme + ":" + value
	case strings.HasPrefix(value, "/"):
		return baseURL.Scheme + "://" + baseURL.Host + value
	default:
		return directoryURL(base) + strings.TrimPrefix(value, "./")
	}
}

// pruneNamespaceDeclarations drops xmlns:prefix declarations whose prefix
// no element or attribute uses anymore.
func pruneNamespaceDeclarations(root *etree.Element) {
	used := make(map[string]bool)
	for el := range Elements(root) {
		if el.Space != "" {
			used[el.Space] = true
		}
		for _, attr := range el.Attr {
			if attr.Space != "" && attr.Space != "xmlns" {
				used[attr.Space] = true
			}
		}
	}
	for el := range Elements(root) {
		kept := el.Attr[:0]
		for _, attr := range el.Attr {
			if attr.Space == "xmlns" && !used[attr.Key] {
				continue
			}
			kept = append(kept, attr)
		}
		el.Attr = kept
	}
}
