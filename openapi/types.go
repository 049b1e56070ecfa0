package openapi

// Version is the OpenAPI version emitted by Build. Version 3.2 is required
// for custom methods such as VIEW, which live under additionalOperations.
const Version = "3.2.0"

// Document represents the root of an OpenAPI document.
//
// See: https://spec.openapis.org/oas/v3.2.0#openapi-object
type Document struct {
	OpenAPI string               `json:"openapi" yaml:"openapi"`
	Info    Info                 `json:"info" yaml:"info"`
	Servers []Server             `json:"servers,omitempty" yaml:"servers,omitempty"`
	Paths   map[string]*PathItem `json:"paths,omitempty" yaml:"paths,omitempty"`
}

// Info provides metadata about the API.
//
// See: https://spec.openapis.org/oas/v3.2.0#info-object
type Info struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Version     string `json:"version" yaml:"version"`
}

// Server represents a server the API is reachable on.
type Server struct {
	URL         string `json:"url" yaml:"url"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// PathItem describes the operations available on a single path.
//
// See: https://spec.openapis.org/oas/v3.2.0#path-item-object
type PathItem struct {
	Get                  *Operation            `json:"get,omitempty" yaml:"get,omitempty"`
	Put                  *Operation            `json:"put,omitempty" yaml:"put,omitempty"`
	Post                 *Operation            `json:"post,omitempty" yaml:"post,omitempty"`
	Delete               *Operation            `json:"delete,omitempty" yaml:"delete,omitempty"`
	Options              *Operation            `json:"options,omitempty" yaml:"options,omitempty"`
	Head                 *Operation            `json:"head,omitempty" yaml:"head,omitempty"`
	Patch                *Operation            `json:"patch,omitempty" yaml:"patch,omitempty"`
	Trace                *Operation            `json:"trace,omitempty" yaml:"trace,omitempty"`
	AdditionalOperations map[string]*Operation `json:"additionalOperations,omitempty" yaml:"additionalOperations,omitempty"`
}

// Operation describes a single API operation on a path.
//
// See: https://spec.openapis.org/oas/v3.2.0#operation-object
type Operation struct {
	OperationID string               `json:"operationId,omitempty" yaml:"operationId,omitempty"`
	Summary     string               `json:"summary,omitempty" yaml:"summary,omitempty"`
	Parameters  []*Parameter         `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	RequestBody *RequestBody         `json:"requestBody,omitempty" yaml:"requestBody,omitempty"`
	Responses   map[string]*Response `json:"responses" yaml:"responses"`
}

// Parameter describes a single operation parameter. Only path parameters
// are derived from routes.
//
// See: https://spec.openapis.org/oas/v3.2.0#parameter-object
type Parameter struct {
	Name        string  `json:"name" yaml:"name"`
	In          string  `json:"in" yaml:"in"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool    `json:"required" yaml:"required"`
	Schema      *Schema `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// RequestBody describes a request body.
type RequestBody struct {
	Required bool                  `json:"required,omitempty" yaml:"required,omitempty"`
	Content  map[string]*MediaType `json:"content" yaml:"content"`
}

// Response describes a single response. Description is required.
type Response struct {
	Description string                `json:"description" yaml:"description"`
	Content     map[string]*MediaType `json:"content,omitempty" yaml:"content,omitempty"`
}

// MediaType pairs a content type with its schema.
type MediaType struct {
	Schema *Schema `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// Schema is the JSON Schema subset that route constraints translate to.
//
// See: https://json-schema.org/draft/2020-12/json-schema-validation
type Schema struct {
	Type        string   `json:"type,omitempty" yaml:"type,omitempty"`
	Format      string   `json:"format,omitempty" yaml:"format,omitempty"`
	Pattern     string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Enum        []string `json:"enum,omitempty" yaml:"enum,omitempty"`
	Minimum     *int64   `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum     *int64   `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	MinLength   *int     `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength   *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}
