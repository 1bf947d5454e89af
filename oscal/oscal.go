package oscal

import (
	"time"

	"github.com/google/uuid"

	"github.com/openctrl/complianceio/schema"
)

// Version is the OSCAL schema version written for new documents.
const Version = "1.0.0"

// Property is a namespaced name/value annotation.
type Property struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	UUID  string `json:"uuid,omitempty"`
	Ns    string `json:"ns,omitempty"`
}

// Link is a reference to another resource.
type Link struct {
	Href      string `json:"href"`
	Rel       string `json:"rel,omitempty"`
	MediaType string `json:"media-type,omitempty"`
	Text      string `json:"text,omitempty"`
}

// DocumentID is an external identifier for a document.
type DocumentID struct {
	Scheme     string `json:"scheme,omitempty"`
	Identifier string `json:"identifier"`
}

// Revision is one entry of a document's revision history.
type Revision struct {
	Title        string     `json:"title,omitempty"`
	Published    *time.Time `json:"published,omitempty"`
	LastModified *time.Time `json:"last-modified,omitempty"`
	Version      string     `json:"version,omitempty"`
	OscalVersion string     `json:"oscal-version,omitempty"`
	Props        []Property `json:"props,omitempty"`
}

// PartyType discriminates people from organizations.
type PartyType string

const (
	PartyTypePerson       PartyType = "person"
	PartyTypeOrganization PartyType = "organization"
)

// TelephoneNumber is a party contact number.
type TelephoneNumber struct {
	Type   string `json:"type,omitempty"`
	Number string `json:"number"`
}

// Party is a responsible person or organization.
type Party struct {
	UUID             string            `json:"uuid"`
	Type             PartyType         `json:"type"`
	Name             string            `json:"name,omitempty"`
	ShortName        string            `json:"short-name,omitempty"`
	Props            []Property        `json:"props,omitempty"`
	Links            []Link            `json:"links,omitempty"`
	EmailAddresses   []string          `json:"email-addresses,omitempty"`
	TelephoneNumbers []TelephoneNumber `json:"telephone-numbers,omitempty"`
	Remarks          string            `json:"remarks,omitempty"`
}

// Role is a defined function assumed by parties.
type Role struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	ShortName   string     `json:"short-name,omitempty"`
	Description string     `json:"description,omitempty"`
	Props       []Property `json:"props,omitempty"`
	Links       []Link     `json:"links,omitempty"`
	Remarks     string     `json:"remarks,omitempty"`
}

// ResponsibleParty assigns parties to a role for the whole document.
type ResponsibleParty struct {
	RoleID     string     `json:"role-id"`
	PartyUUIDs []string   `json:"party-uuids"`
	Props      []Property `json:"props,omitempty"`
	Links      []Link     `json:"links,omitempty"`
	Remarks    string     `json:"remarks,omitempty"`
}

// ResponsibleRole assigns parties to a role for a single entity.
type ResponsibleRole struct {
	RoleID     string     `json:"role-id"`
	PartyUUIDs []string   `json:"party-uuids,omitempty"`
	Props      []Property `json:"props,omitempty"`
	Links      []Link     `json:"links,omitempty"`
	Remarks    string     `json:"remarks,omitempty"`
}

// SetParameter assigns values to a control parameter.
type SetParameter struct {
	ParamID string   `json:"param-id"`
	Values  []string `json:"values"`
	Remarks string   `json:"remarks,omitempty"`
}

// Resource is a back-matter resource.
type Resource struct {
	UUID        string     `json:"uuid"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Props       []Property `json:"props,omitempty"`
	Remarks     string     `json:"remarks,omitempty"`
}

// BackMatter holds the document's referenced resources.
type BackMatter struct {
	Resources []Resource `json:"resources,omitempty"`
}

// Metadata is the document metadata block shared by every OSCAL document
// kind. Its fields serialize in this fixed order regardless of how the
// document was built, keeping output diff-stable.
type Metadata struct {
	Title              string             `json:"title"`
	Published          *time.Time         `json:"published,omitempty"`
	LastModified       time.Time          `json:"last-modified"`
	Version            string             `json:"version"`
	OscalVersion       string             `json:"oscal-version"`
	Revisions          []Revision         `json:"revisions,omitempty"`
	DocumentIDs        []DocumentID       `json:"document-ids,omitempty"`
	Props              []Property         `json:"props,omitempty"`
	Links              []Link             `json:"links,omitempty"`
	Roles              []Role             `json:"roles,omitempty"`
	Parties            []Party            `json:"parties,omitempty"`
	ResponsibleParties []ResponsibleParty `json:"responsible-parties,omitempty"`
	Remarks            string             `json:"remarks,omitempty"`

	// Extras carries fields unknown to this schema version, re-emitted
	// verbatim on save.
	Extras schema.Extras `json:"-"`
}

// NewMetadata builds metadata for a new document with the current time as
// last-modified.
func NewMetadata(title, version string) Metadata {
	return Metadata{
		Title:        title,
		Version:      version,
		OscalVersion: Version,
		LastModified: time.Now().UTC().Truncate(time.Second),
	}
}

// UnmarshalJSON decodes the canonical fields and collects unknown ones
// into Extras.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	type plain Metadata
	var p plain
	if err := DecodeObject(data, &p); err != nil {
		return err
	}
	*m = Metadata(p)
	return CollectExtras(data, &m.Extras, p)
}

// MarshalJSON emits the canonical fields in declaration order followed by
// Extras.
func (m Metadata) MarshalJSON() ([]byte, error) {
	type plain Metadata
	return EncodeObject(plain(m), m.Extras)
}

// Validate checks the metadata block, appending violations under the given
// entity path.
func (m *Metadata) Validate(entity string, v *schema.Violations) {
	if m.Title == "" {
		v.Add(entity, "title", "required field missing")
	}
	if m.Version == "" {
		v.Add(entity, "version", "required field missing")
	}
	if m.OscalVersion == "" {
		v.Add(entity, "oscal-version", "required field missing")
	}
	if m.LastModified.IsZero() {
		v.Add(entity, "last-modified", "required field missing")
	}
	for _, party := range m.Parties {
		if !IsUUID(party.UUID) {
			v.Add(entity, "parties", "party uuid is not a valid uuid")
		}
		if party.Type != PartyTypePerson && party.Type != PartyTypeOrganization {
			v.Add(entity, "parties", "party type must be person or organization")
		}
	}
}

// IsUUID reports whether s is a syntactically valid RFC 4122 identifier.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// NewUUID returns a fresh random document identifier.
func NewUUID() string {
	return uuid.NewString()
}
