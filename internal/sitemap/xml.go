package sitemap

import (
	"bytes"
	"compress/gzip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// maxInflatedSize bounds a gzipped sitemap after decompression.
const maxInflatedSize = 50 << 20

var gzipMagic = []byte{0x1f, 0x8b}

type documentKind int

const (
	kindUnknown documentKind = iota
	kindIndex
	kindURLSet
)

// document is the parsed form of one sitemap body.
type document struct {
	kind     documentKind
	sitemaps []string   // kindIndex
	urls     []urlEntry // kindURLSet
}

type urlEntry struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod"`
}

type indexEntry struct {
	Loc string `xml:"loc"`
}

// Element names carry no namespace so they match with or without the
// sitemaps.org default namespace.
type urlSetXML struct {
	URLs []urlEntry `xml:"url"`
}

type indexXML struct {
	Sitemaps []indexEntry `xml:"sitemap"`
}

// parseDocument decides the sitemap shape from the root element's local name
// and decodes the matching children. Any other root yields kindUnknown.
func parseDocument(body []byte) (*document, error) {
	body, err := inflate(body)
	if err != nil {
		return nil, err
	}

	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.CharsetReader = charset.NewReaderLabel

	root, err := firstStartElement(dec)
	if err != nil {
		return nil, err
	}

	switch root.Name.Local {
	case "sitemapindex":
		var v indexXML
		if err := dec.DecodeElement(&v, &root); err != nil {
			return nil, fmt.Errorf("decode sitemapindex: %w", err)
		}
		doc := &document{kind: kindIndex}
		for _, s := range v.Sitemaps {
			if loc := strings.TrimSpace(s.Loc); loc != "" {
				doc.sitemaps = append(doc.sitemaps, loc)
			}
		}
		return doc, nil

	case "urlset":
		var v urlSetXML
		if err := dec.DecodeElement(&v, &root); err != nil {
			return nil, fmt.Errorf("decode urlset: %w", err)
		}
		doc := &document{kind: kindURLSet}
		for _, u := range v.URLs {
			loc := strings.TrimSpace(u.Loc)
			if loc == "" {
				continue
			}
			doc.urls = append(doc.urls, urlEntry{Loc: loc, LastMod: strings.TrimSpace(u.LastMod)})
		}
		return doc, nil

	default:
		return &document{kind: kindUnknown}, nil
	}
}

func firstStartElement(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return xml.StartElement{}, errors.New("no root element")
			}
			return xml.StartElement{}, err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se, nil
		}
	}
}

// inflate decompresses bodies that start with the gzip magic bytes, as
// served for "sitemap.xml.gz" without a Content-Encoding header.
func inflate(body []byte) ([]byte, error) {
	if !bytes.HasPrefix(body, gzipMagic) {
		return body, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("gzip sitemap: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, maxInflatedSize))
	if err != nil {
		return nil, fmt.Errorf("gzip sitemap: %w", err)
	}
	return out, nil
}
