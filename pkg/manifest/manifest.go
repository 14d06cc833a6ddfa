// Package manifest builds SCORM 1.2 imsmanifest.xml documents.
//
// The builder is a pure function from a validated [Spec] to serialized XML
// bytes. The produced structure is the contract an LMS import validator
// checks literally: element names, attribute names, and namespaces must not
// deviate. One organization, one item, and one resource are declared (a
// single-SCO course).
package manifest

import (
	"encoding/xml"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mreiter/scormpack/pkg/errors"
)

// Namespace URIs of the SCORM 1.2 content packaging schema.
const (
	nsIMSCP = "http://www.imsglobal.org/xsd/imscp_v1p1"
	nsADLCP = "http://www.adlnet.org/xsd/adlcp_v1p3"
	nsXSI   = "http://www.w3.org/2001/XMLSchema-instance"
)

// Fixed identifiers of the single-SCO layout.
const (
	orgID  = "ORG-1"
	itemID = "ITEM-1"
	resID  = "RES-1"
)

// header is the XML declaration prepended to every manifest.
const header = "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n"

// validate is the shared validator instance for Spec checks.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Spec is the input contract of the manifest builder. The resolver
// guarantees a valid Spec for normal input flow; violations indicate a
// programming error and surface as PRECONDITION failures.
type Spec struct {
	// Title is the course display title.
	Title string `validate:"required"`
	// Identifier is a globally-unique XML ID token (no whitespace).
	Identifier string `validate:"required"`
	// LaunchFile is the launch document path, forward-slash form.
	LaunchFile string `validate:"required"`
	// Files is the complete file list; it must contain LaunchFile.
	Files []string `validate:"required,min=1,dive,required"`
}

// Validate checks the Spec invariants.
func (s Spec) Validate() error {
	if err := validate.Struct(s); err != nil {
		return errors.Wrap(errors.ErrCodePrecondition, err, "invalid manifest spec")
	}
	if strings.ContainsAny(s.Identifier, " \t\n\r") {
		return errors.New(errors.ErrCodePrecondition, "identifier %q is not a valid XML ID token", s.Identifier)
	}
	for _, f := range s.Files {
		if f == s.LaunchFile {
			return nil
		}
	}
	return errors.New(errors.ErrCodePrecondition, "launch file %q is not in the file list", s.LaunchFile)
}

// Build produces the serialized imsmanifest.xml for the given spec.
//
// File entries are sorted lexicographically so identical input yields
// byte-identical output. Attribute order follows the struct field order and
// is stable across runs.
func Build(spec Spec) ([]byte, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	files := append([]string(nil), spec.Files...)
	sort.Strings(files)

	res := xmlResource{
		Identifier: resID,
		Type:       "webcontent",
		ScormType:  "sco",
		Href:       spec.LaunchFile,
	}
	for _, f := range files {
		res.Files = append(res.Files, xmlFile{Href: f})
	}

	doc := xmlManifest{
		Xmlns:      nsIMSCP,
		XmlnsADLCP: nsADLCP,
		XmlnsXSI:   nsXSI,
		Identifier: spec.Identifier,
		Version:    "1",
		Metadata: xmlMetadata{
			Schema:        "ADL SCORM",
			SchemaVersion: "1.2",
		},
		Organizations: xmlOrganizations{
			Default: orgID,
			Organization: xmlOrganization{
				Identifier: orgID,
				Title:      spec.Title,
				Item: xmlItem{
					Identifier:    itemID,
					IdentifierRef: resID,
					Title:         spec.Title,
				},
			},
		},
		Resources: xmlResources{Resource: res},
	}

	body, err := xml.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "serialize manifest")
	}

	return append([]byte(header), body...), nil
}

// Filename is the manifest entry name required at the archive root.
const Filename = "imsmanifest.xml"

// The xml* types mirror the imscp_v1p1 manifest structure. Namespace
// prefixes are written literally so the serialized form matches what LMS
// importers expect.

type xmlManifest struct {
	XMLName    xml.Name `xml:"manifest"`
	Xmlns      string   `xml:"xmlns,attr"`
	XmlnsADLCP string   `xml:"xmlns:adlcp,attr"`
	XmlnsXSI   string   `xml:"xmlns:xsi,attr"`
	Identifier string   `xml:"identifier,attr"`
	Version    string   `xml:"version,attr"`

	Metadata      xmlMetadata      `xml:"metadata"`
	Organizations xmlOrganizations `xml:"organizations"`
	Resources     xmlResources     `xml:"resources"`
}

type xmlMetadata struct {
	Schema        string `xml:"schema"`
	SchemaVersion string `xml:"schemaversion"`
}

type xmlOrganizations struct {
	Default      string          `xml:"default,attr"`
	Organization xmlOrganization `xml:"organization"`
}

type xmlOrganization struct {
	Identifier string  `xml:"identifier,attr"`
	Title      string  `xml:"title"`
	Item       xmlItem `xml:"item"`
}

type xmlItem struct {
	Identifier    string `xml:"identifier,attr"`
	IdentifierRef string `xml:"identifierref,attr"`
	Title         string `xml:"title"`
}

type xmlResources struct {
	Resource xmlResource `xml:"resource"`
}

type xmlResource struct {
	Identifier string    `xml:"identifier,attr"`
	Type       string    `xml:"type,attr"`
	ScormType  string    `xml:"adlcp:scormtype,attr"`
	Href       string    `xml:"href,attr"`
	Files      []xmlFile `xml:"file"`
}

type xmlFile struct {
	Href string `xml:"href,attr"`
}
