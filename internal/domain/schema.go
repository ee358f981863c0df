package domain

import (
	"slices"
	"strings"
)

// FieldKind drives coercion and validation of a submitted value
type FieldKind string

const (
	KindString FieldKind = "string"
	KindText   FieldKind = "text"
	KindSlug   FieldKind = "slug"
	KindNumber FieldKind = "number"
	KindBool   FieldKind = "bool"
	KindDate   FieldKind = "date"
	KindList   FieldKind = "list"
	KindURL    FieldKind = "url"
	KindEmail  FieldKind = "email"
	KindFile   FieldKind = "file"
	KindFiles  FieldKind = "files"
)

// Field describes one type specific field
type Field struct {
	Name     string
	Kind     FieldKind
	Required bool
	Options  []string // allowed values for enumerations
}

// IsFile reports whether uploads are stored in this field
func (f Field) IsFile() bool {
	return f.Kind == KindFile || f.Kind == KindFiles
}

// Schema is the descriptor consumed by the generic CRUD engine
type Schema struct {
	Type         ContentType
	Route        string // singular route segment: add-<Route>, get-<Route>/:id
	ListRoute    string // list route segment: get-<ListRoute>
	Table        string
	TitleField   string
	SlugUnique   bool
	AllowUnknown bool // free-form types keep fields not declared below
	Fields       []Field
}

// Field returns the descriptor for name
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// HasSlug reports whether records of this type carry a slug
func (s *Schema) HasSlug() bool {
	_, ok := s.Field("slug")
	return ok
}

// FileFields returns the fields that reference stored objects
func (s *Schema) FileFields() []Field {
	var out []Field
	for _, f := range s.Fields {
		if f.IsFile() {
			out = append(out, f)
		}
	}
	return out
}

// SearchFields returns the fields whose values free text search matches:
// strings, long text and lists. File paths are never searched.
func (s *Schema) SearchFields() []string {
	var out []string
	for _, f := range s.Fields {
		switch f.Kind {
		case KindString, KindText, KindList:
			out = append(out, f.Name)
		}
	}
	return out
}

// RequiredFields returns the names of required fields in declaration order
func (s *Schema) RequiredFields() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

func req(name string, kind FieldKind) Field { return Field{Name: name, Kind: kind, Required: true} }
func opt(name string, kind FieldKind) Field { return Field{Name: name, Kind: kind} }

// TenderKinds are the document types sharing the tender collection
var TenderKinds = []string{string(TenderKindTender), string(TenderKindCircular)}

var schemas = []*Schema{
	{
		Type: TypeNews, Route: "news", ListRoute: "news", Table: "news",
		TitleField: "title", SlugUnique: true,
		Fields: []Field{
			req("title", KindString), req("slug", KindSlug), req("content", KindText),
			opt("excerpt", KindText), opt("author", KindString), opt("category", KindString),
			opt("tags", KindList), opt("externalLink", KindURL), opt("images", KindFiles),
		},
	},
	{
		Type: TypeEvent, Route: "event", ListRoute: "events", Table: "events",
		TitleField: "title", SlugUnique: true,
		Fields: []Field{
			req("title", KindString), req("slug", KindSlug), req("description", KindText),
			req("date", KindDate), opt("endDate", KindDate), opt("time", KindString),
			opt("venue", KindString), {Name: "mode", Kind: KindString, Options: []string{"online", "offline", "hybrid"}},
			opt("registrationLink", KindURL), opt("tags", KindList), opt("image", KindFile),
		},
	},
	{
		Type: TypeProgram, Route: "program", ListRoute: "programs", Table: "programs",
		TitleField: "title", SlugUnique: true,
		Fields: []Field{
			req("title", KindString), req("slug", KindSlug), req("description", KindText),
			opt("duration", KindString), opt("eligibility", KindText), opt("benefits", KindList),
			opt("applicationLink", KindURL), opt("deadline", KindDate), opt("order", KindNumber),
			opt("image", KindFile),
		},
	},
	{
		Type: TypeStartup, Route: "startup", ListRoute: "startups", Table: "startups",
		TitleField: "name", SlugUnique: true,
		Fields: []Field{
			req("name", KindString), req("slug", KindSlug), req("description", KindText),
			opt("founders", KindList), opt("sector", KindString), opt("stage", KindString),
			opt("foundedYear", KindNumber), opt("fundingRaised", KindNumber),
			opt("website", KindURL), opt("email", KindEmail), opt("featured", KindBool),
			opt("logo", KindFile),
		},
	},
	{
		Type: TypeGallery, Route: "gallery", ListRoute: "gallery", Table: "gallery",
		TitleField: "title",
		Fields: []Field{
			req("title", KindString), opt("description", KindText), opt("category", KindString),
			opt("eventDate", KindDate), opt("images", KindFiles),
		},
	},
	{
		Type: TypeReport, Route: "report", ListRoute: "reports", Table: "reports",
		TitleField: "title",
		Fields: []Field{
			req("title", KindString), req("year", KindNumber), opt("description", KindText),
			opt("category", KindString), opt("file", KindFile), opt("coverImage", KindFile),
		},
	},
	{
		Type: TypeFAQ, Route: "faq", ListRoute: "faqs", Table: "faqs",
		TitleField: "question",
		Fields: []Field{
			req("question", KindString), req("answer", KindText),
			opt("category", KindString), opt("order", KindNumber),
		},
	},
	{
		Type: TypeTeam, Route: "team", ListRoute: "team", Table: "team_members",
		TitleField: "name",
		Fields: []Field{
			req("name", KindString), req("designation", KindString), opt("bio", KindText),
			opt("email", KindEmail), opt("linkedin", KindURL), opt("category", KindString),
			opt("order", KindNumber), opt("photo", KindFile),
		},
	},
	{
		Type: TypeTestimonial, Route: "testimonial", ListRoute: "testimonials", Table: "testimonials",
		TitleField: "name",
		Fields: []Field{
			req("name", KindString), req("quote", KindText), opt("designation", KindString),
			opt("company", KindString), opt("rating", KindNumber), opt("photo", KindFile),
		},
	},
	{
		Type: TypePartner, Route: "partner", ListRoute: "partners", Table: "partners",
		TitleField: "name",
		Fields: []Field{
			req("name", KindString), opt("category", KindString), opt("website", KindURL),
			opt("description", KindText), opt("order", KindNumber), opt("logo", KindFile),
		},
	},
}

// TenderSchema validates tender and circular submissions
var TenderSchema = &Schema{
	Type: TypeTender, Route: "tender", ListRoute: "tenders", Table: "tenders",
	TitleField: "title",
	Fields: []Field{
		req("title", KindString), opt("date", KindDate),
		{Name: "type", Kind: KindString, Options: TenderKinds},
		opt("referenceNo", KindString), opt("description", KindText),
		opt("closingDate", KindDate), opt("link", KindURL), opt("file", KindFile),
	},
}

// HomepageSchema accepts any field; only the image is typed
var HomepageSchema = &Schema{
	Type: TypeHomepage, Route: "homepage", ListRoute: "homepage", Table: "homepage_sections",
	TitleField: "heading", AllowUnknown: true,
	Fields: []Field{
		opt("heading", KindString), opt("subheading", KindString), opt("body", KindText),
		opt("ctaLink", KindURL), opt("items", KindList), opt("image", KindFile),
	},
}

// Schemas returns the generic content schemas in a stable order
func Schemas() []*Schema {
	return slices.Clone(schemas)
}

// LookupSchema resolves a generic content type by type name or route segment
func LookupSchema(name string) (*Schema, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, s := range schemas {
		if string(s.Type) == name || s.Route == name || s.ListRoute == name {
			return s, true
		}
	}
	return nil, false
}
