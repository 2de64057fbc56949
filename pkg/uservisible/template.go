package uservisible

import (
	"encoding/base64"
	"errors"
	"time"

	"github.com/cbroglie/mustache"
	"github.com/goodsign/monday"
)

// Format is the value passed as userVisibleDataFormat, naming the transport
// encoding scheme of the statement.
const Format = "simpleMarkdownV1"

const timeLayout = "Monday, 2 January 2006 15:04:05"

// signStatementTemplate is the fixed statement presented to the user by the
// identification app before signing.
const signStatementTemplate = `You are about to sign the following document.

Author: {{author}}
Created: {{created}}
Language: {{language}}
Last modified: {{modified}}

Statement issued {{issued_at}}.`

// Metadata holds the document properties the statement is built from. The
// fields mirror what a document-info extractor yields, the dates keep their
// source formatting.
type Metadata struct {
	Author       string
	CreationDate string
	Language     string
	ModDate      string
	Producer     string
	Title        string
}

// Data is the rendered statement together with its transport encoding,
// ready to be attached to a signing order.
type Data struct {
	Text    string
	Encoded string
	Format  string
}

// NowFunc is used to store a function that returns the current time. This can be changed when you want to mock the current time.
var NowFunc = time.Now

// ErrMissingMetadata is returned when the document metadata is not present yet
var ErrMissingMetadata = errors.New("document metadata not available")

func timeLocation() *time.Location {
	loc, _ := time.LoadLocation("Europe/Stockholm")
	return loc
}

// Render produces the human-readable statement for the given metadata.
func Render(meta Metadata) (string, error) {
	issuedAt := monday.Format(NowFunc().In(timeLocation()), timeLayout, monday.LocaleSvSE)
	return mustache.Render(signStatementTemplate, map[string]string{
		"author":    meta.Author,
		"created":   meta.CreationDate,
		"language":  meta.Language,
		"modified":  meta.ModDate,
		"issued_at": issuedAt,
	})
}

// Encode applies the reversible transport encoding the provider expects.
func Encode(text string) string {
	return base64.StdEncoding.EncodeToString([]byte(text))
}

// Decode reverses the transport encoding.
func Decode(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Build renders and encodes the statement in one go.
func Build(meta Metadata) (*Data, error) {
	if meta == (Metadata{}) {
		return nil, ErrMissingMetadata
	}
	text, err := Render(meta)
	if err != nil {
		return nil, err
	}
	return &Data{Text: text, Encoded: Encode(text), Format: Format}, nil
}
