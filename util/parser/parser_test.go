package parser

import (
	"slices"
	"strings"
	"testing"
)

const protectedMPD = `<?xml version="1.0" encoding="UTF-8"?>
<MPD xmlns="urn:mpeg:dash:schema:mpd:2011"
     xmlns:cenc="urn:mpeg:cenc:2013"
     xmlns:mspr="urn:microsoft:playready"
     type="static" mediaPresentationDuration="PT1H2M3S">
  <Period id="p0">
    <AdaptationSet mimeType="video/mp4" contentType="video">
      <ContentProtection schemeIdUri="urn:mpeg:dash:mp4protection:2011" value="cenc"
                         cenc:default_KID="1D83A873-B4D3-4F77-B5F6-8424A0EFC8C1"/>
      <ContentProtection schemeIdUri="urn:uuid:EDEF8BA9-79D6-4ACE-A3C8-27DCD51D21ED">
        <cenc:pssh>
          AAAAMHBzc2gAAAAA7e+LqXnWSs6jyCfc1R0h7QAAABAAAAAAAAAA
          AAAAAAAAAAAA
        </cenc:pssh>
        <widevine:license xmlns:widevine="urn:mpeg:widevine:2013">https://lic</widevine:license>
      </ContentProtection>
      <ContentProtection schemeIdUri="urn:uuid:9A04F079-9840-4286-AB92-E65BE0885F95" value="MSPR 2.0">
        <mspr:pro><mspr:inner>data</mspr:inner></mspr:pro>
        <cenc:pssh>AAAA</cenc:pssh>
      </ContentProtection>
      <SegmentTemplate initialization="init/$RepresentationID$.mp4" media="/abs/$RepresentationID$/$Number%05d$.m4s"/>
      <Representation id="v1" bandwidth="2000000" width="1280" height="720" codecs="avc1.64001f"/>
    </AdaptationSet>
    <AdaptationSet mimeType="audio/mp4">
      <Representation id="a1" bandwidth="128000" codecs="mp4a.40.2"/>
    </AdaptationSet>
  </Period>
</MPD>`

const manifestURL = "https://cdn.example.com/vod/show/manifest.mpd?token=abc"

func TestLocalName(t *testing.T) {
	tests := map[string]string{
		"pssh":                    "pssh",
		"cenc:pssh":               "pssh",
		"CENC:PSSH":               "pssh",
		"{urn:mpeg:cenc:2013}pssh": "pssh",
		"a:b:ContentProtection":   "contentprotection",
	}
	for input, want := range tests {
		if got := LocalName(input); got != want {
			t.Errorf("LocalName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestParseManifest(t *testing.T) {
	doc, err := ParseManifest([]byte(protectedMPD), manifestURL)
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	if doc.BaseURL != "https://cdn.example.com/vod/show/" {
		t.Errorf("BaseURL = %q", doc.BaseURL)
	}
	var protections int
	for el := range Elements(doc.Root()) {
		if IsElement(el, "contentprotection") {
			protections++
		}
	}
	if protections != 3 {
		t.Errorf("found %d ContentProtection nodes, want 3", protections)
	}
}

func TestParseManifestBaseURL(t *testing.T) {
	raw := `<MPD><BaseURL>https://origin.example.com/dash/</BaseURL></MPD>`
	doc, err := ParseManifest([]byte(raw), manifestURL)
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	if doc.BaseURL != "https://origin.example.com/dash/" {
		t.Errorf("BaseURL = %q", doc.BaseURL)
	}
}

func TestParseManifestInvalid(t *testing.T) {
	if _, err := ParseManifest([]byte("not xml at all"), manifestURL); err == nil {
		t.Error("expected error for non xml input")
	}
}

func TestAttrValueSkipsNamespaceDeclarations(t *testing.T) {
	doc, err := ParseManifest([]byte(`<a xmlns:pssh="urn:x" x:pssh="value"/>`), manifestURL)
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	got, ok := AttrValue(doc.Root(), "PSSH")
	if !ok || got != "value" {
		t.Errorf("AttrValue = %q, %v", got, ok)
	}
}

func TestElementsStopsEarly(t *testing.T) {
	doc, err := ParseManifest([]byte(protectedMPD), manifestURL)
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	var seen int
	for range Elements(doc.Root()) {
		seen++
		if seen == 2 {
			break
		}
	}
	if seen != 2 {
		t.Errorf("iteration did not stop, saw %d", seen)
	}
}

func TestClassifyScheme(t *testing.T) {
	tests := []struct {
		scheme string
		want   SchemeKind
	}{
		{"urn:mpeg:dash:mp4protection:2011", SchemeCENC},
		{"urn:uuid:EDEF8BA9-79D6-4ACE-A3C8-27DCD51D21ED", SchemeWidevine},
		{"urn:uuid:9a04f079-9840-4286-ab92-e65be0885f95", SchemePlayReady},
		{"urn:uuid:e2719d58-a985-b3c9-781a-b030af78d30e", SchemeUnknown},
	}
	for _, tt := range tests {
		if got := ClassifyScheme(tt.scheme); got != tt.want {
			t.Errorf("ClassifyScheme(%q) = %d, want %d", tt.scheme, got, tt.want)
		}
	}
}

func TestRewriteManifestPlayReady(t *testing.T) {
	out := RewriteManifest(protectedMPD, manifestURL)
	if out == protectedMPD {
		t.Fatal("manifest was not rewritten")
	}
	if strings.Contains(out, "mspr") {
		t.Errorf("vendor prefix survived the rewrite:\n%s", out)
	}
	if !strings.Contains(out, "9A04F079-9840-4286-AB92-E65BE0885F95") {
		t.Error("playready marker node was removed")
	}
}

func TestRewriteManifestProtectionNodes(t *testing.T) {
	out := RewriteManifest(protectedMPD, manifestURL)
	doc, err := ParseManifest([]byte(out), manifestURL)
	if err != nil {
		t.Fatalf("rewritten manifest does not parse: %v", err)
	}
	for el := range Elements(doc.Root()) {
		if !IsElement(el, "ContentProtection") {
			continue
		}
		scheme, _ := AttrValue(el, "schemeIdUri")
		children := el.ChildElements()
		switch ClassifyScheme(scheme) {
		case SchemeCENC, SchemePlayReady:
			if len(children) != 0 {
				t.Errorf("%s kept %d children", scheme, len(children))
			}
		case SchemeWidevine:
			if len(children) != 1 || !IsElement(children[0], "pssh") {
				t.Fatalf("widevine node should keep only its pssh, got %d children", len(children))
			}
			if text := children[0].Text(); text != strings.TrimSpace(text) {
				t.Errorf("widevine pssh text not trimmed: %q", text)
			}
		}
	}
	if !strings.Contains(out, "cenc:default_KID") {
		t.Error("default_KID attribute lost")
	}
}

func TestRewriteManifestSegmentTemplate(t *testing.T) {
	out := RewriteManifest(protectedMPD, manifestURL)
	doc, err := ParseManifest([]byte(out), manifestURL)
	if err != nil {
		t.Fatalf("rewritten manifest does not parse: %v", err)
	}
	var template = slices.Collect(func(yield func(string) bool) {
		for el := range Elements(doc.Root()) {
			if IsElement(el, "SegmentTemplate") {
				init, _ := AttrValue(el, "initialization")
				media, _ := AttrValue(el, "media")
				if !yield(init) || !yield(media) {
					return
				}
			}
		}
	})
	want := []string{
		"https://cdn.example.com/vod/show/init/$RepresentationID$.mp4",
		"https://cdn.example.com/abs/$RepresentationID$/$Number%05d$.m4s",
	}
	if !slices.Equal(template, want) {
		t.Errorf("template urls = %q, want %q", template, want)
	}
}

func TestRewriteManifestFallsBack(t *testing.T) {
	for _, input := range []string{"", "<MPD><unclosed>", "plain text"} {
		if got := RewriteManifest(input, manifestURL); got != input {
			t.Errorf("RewriteManifest(%q) = %q, want input back", input, got)
		}
	}
}

func TestAbsolutizeTemplate(t *testing.T) {
	base := "https://cdn.example.com/a/b/manifest.mpd"
	tests := map[string]string{
		"seg_$Number$.m4s":          "https://cdn.example.com/a/b/seg_$Number$.m4s",
		"./seg.m4s":                  "https://cdn.example.com/a/b/seg.m4s",
		"/root/seg.m4s":              "https://cdn.example.com/root/seg.m4s",
		"//other.example.com/s.m4s":  "https://other.example.com/s.m4s",
		"http://x.example.com/s.m4s": "http://x.example.com/s.m4s",
	}
	for input, want := range tests {
		if got := absolutizeTemplate(base, input); got != want {
			t.Errorf("absolutizeTemplate(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestInspectMPD(t *testing.T) {
	summary, err := Inspect([]byte(protectedMPD), manifestURL)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if summary.Type != "mpd" || summary.IsLive {
		t.Errorf("type %q live %t", summary.Type, summary.IsLive)
	}
	if summary.Duration != 3723 {
		t.Errorf("Duration = %d, want 3723", summary.Duration)
	}
	if !summary.Protected {
		t.Error("manifest should be reported protected")
	}
	if len(summary.Variants) != 2 {
		t.Fatalf("got %d variants, want 2", len(summary.Variants))
	}
	video := summary.Variants[0]
	if video.MediaType != "video" || video.VideoCodec != "avc" || video.Height != 720 {
		t.Errorf("unexpected video variant %+v", video)
	}
	if summary.Variants[1].AudioCodec != "aac" {
		t.Errorf("unexpected audio variant %+v", summary.Variants[1])
	}
}

func TestInspectM3U8(t *testing.T) {
	master := `#EXTM3U
#EXT-X-STREAM-INF:BANDWIDTH=1280000,RESOLUTION=1280x720,CODECS="avc1.4d401f,mp4a.40.2"
hd/index.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=640000,RESOLUTION=640x360,CODECS="avc1.4d401e,mp4a.40.2"
sd/index.m3u8
`
	summary, err := Inspect([]byte(master), "https://cdn.example.com/live/master.m3u8")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if summary.Type != "hls" || len(summary.Variants) != 2 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if got := summary.Variants[0].URL; got != "https://cdn.example.com/live/hd/index.m3u8" {
		t.Errorf("variant url = %q", got)
	}
	if summary.Variants[0].Width != 1280 {
		t.Errorf("width = %d", summary.Variants[0].Width)
	}

	media := `#EXTM3U
#EXT-X-TARGETDURATION:6
#EXT-X-KEY:METHOD=AES-128,URI="https://keys.example.com/k"
#EXTINF:6.0,
seg0.ts
#EXTINF:4.0,
seg1.ts
#EXT-X-ENDLIST
`
	summary, err = Inspect([]byte(media), "https://cdn.example.com/vod/index.m3u8")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if summary.IsLive || summary.Duration != 10 || !summary.Protected {
		t.Errorf("unexpected media summary %+v", summary)
	}
}
