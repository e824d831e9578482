package ir

// IntermediateRepresentation is the document handed to generators. Its
// shape is identical for filtered and unfiltered builds; only the content
// of the maps and the package tree differ.
type IntermediateRepresentation struct {
	APIName                     Name                         `json:"api_name"`
	APIDisplayName              string                       `json:"api_display_name,omitempty"`
	APIDocs                     string                       `json:"api_docs,omitempty"`
	Auth                        APIAuth                      `json:"auth"`
	Headers                     []HTTPHeader                 `json:"headers"`
	Types                       map[TypeID]TypeDeclaration   `json:"types"`
	Errors                      map[ErrorID]ErrorDeclaration `json:"errors"`
	Services                    map[ServiceID]HTTPService    `json:"services"`
	Constants                   Constants                    `json:"constants"`
	Environments                *EnvironmentsConfig          `json:"environments,omitempty"`
	ErrorDiscriminationStrategy *ErrorDiscriminationStrategy `json:"error_discrimination_strategy,omitempty"`
	BasePath                    *HTTPPath                    `json:"base_path,omitempty"`
	PathParameters              []PathParameter              `json:"path_parameters"`
	Variables                   []VariableDeclaration        `json:"variables"`
	ServiceTypeReferenceInfo    ServiceTypeReferenceInfo     `json:"service_type_reference_info"`
	RootPackage                 Package                      `json:"root_package"`
	Subpackages                 map[SubpackageID]Subpackage  `json:"subpackages"`
	SDKConfig                   SDKConfig                    `json:"sdk_config"`
}

// AuthRequirement says whether all or any of the schemes must be supplied.
type AuthRequirement string

const (
	AuthRequirementAll AuthRequirement = "ALL"
	AuthRequirementAny AuthRequirement = "ANY"
)

// APIAuth is the root-level auth configuration. Schemes is empty when the
// API declares no auth.
type APIAuth struct {
	Requirement AuthRequirement `json:"requirement"`
	Schemes     []AuthScheme    `json:"schemes"`
	Docs        string          `json:"docs,omitempty"`
}

// AuthSchemeKind discriminates AuthScheme.
type AuthSchemeKind string

const (
	AuthSchemeBearer AuthSchemeKind = "bearer"
	AuthSchemeBasic  AuthSchemeKind = "basic"
	AuthSchemeHeader AuthSchemeKind = "header"
)

// AuthScheme is one way of authenticating.
type AuthScheme struct {
	Kind   AuthSchemeKind    `json:"type"`
	Bearer *BearerAuthScheme `json:"bearer,omitempty"`
	Basic  *BasicAuthScheme  `json:"basic,omitempty"`
	Header *HeaderAuthScheme `json:"header,omitempty"`
	Docs   string            `json:"docs,omitempty"`
}

// BearerAuthScheme is an Authorization: Bearer token.
type BearerAuthScheme struct {
	Token Name `json:"token"`
}

// BasicAuthScheme is HTTP basic auth.
type BasicAuthScheme struct {
	Username Name `json:"username"`
	Password Name `json:"password"`
}

// HeaderAuthScheme is a credential sent in a custom header.
type HeaderAuthScheme struct {
	Name      NameAndWireValue `json:"name"`
	ValueType TypeReference    `json:"value_type"`
	Prefix    string           `json:"prefix,omitempty"`
}

// EnvironmentsConfig lists the base URLs an SDK can target.
type EnvironmentsConfig struct {
	DefaultEnvironment *EnvironmentID `json:"default_environment,omitempty"`
	Environments       []Environment  `json:"environments"`
}

// Environment is a named base URL.
type Environment struct {
	ID   EnvironmentID `json:"id"`
	Name Name          `json:"name"`
	URL  string        `json:"url"`
	Docs string        `json:"docs,omitempty"`
}

// ErrorDiscriminationKind discriminates ErrorDiscriminationStrategy.
type ErrorDiscriminationKind string

const (
	ErrorDiscriminationStatusCode ErrorDiscriminationKind = "statusCode"
	ErrorDiscriminationByProperty ErrorDiscriminationKind = "property"
)

// ErrorDiscriminationStrategy tells generators how to tell errors apart.
type ErrorDiscriminationStrategy struct {
	Kind     ErrorDiscriminationKind      `json:"type"`
	Property *ErrorDiscriminationProperty `json:"property,omitempty"`
}

// ErrorDiscriminationProperty discriminates errors by a body property.
type ErrorDiscriminationProperty struct {
	Discriminant    NameAndWireValue `json:"discriminant"`
	ContentProperty NameAndWireValue `json:"content_property"`
}

// VariableDeclaration is a root-level variable usable from path parameters.
type VariableDeclaration struct {
	ID   VariableID    `json:"id"`
	Name Name          `json:"name"`
	Type TypeReference `json:"type"`
	Docs string        `json:"docs,omitempty"`
}

// Constants are fixed names generators share.
type Constants struct {
	ErrorInstanceIDKey NameAndWireValue `json:"error_instance_id_key"`
}

// ServiceTypeReferenceInfo partitions service-reachable types into those
// used by exactly one service and those shared by several.
type ServiceTypeReferenceInfo struct {
	TypesReferencedOnlyByService map[ServiceID][]TypeID `json:"types_referenced_only_by_service"`
	SharedTypes                  []TypeID               `json:"shared_types"`
}

// Package is a node of the emitted namespace hierarchy.
type Package struct {
	Filepath           Filepath          `json:"filepath"`
	Service            *ServiceID        `json:"service,omitempty"`
	Types              []TypeID          `json:"types"`
	Errors             []ErrorID         `json:"errors"`
	Subpackages        []SubpackageID    `json:"subpackages"`
	HasEndpointsInTree bool              `json:"has_endpoints_in_tree"`
	Docs               string            `json:"docs,omitempty"`
	NavigationConfig   *NavigationConfig `json:"navigation_config,omitempty"`
}

// NavigationConfig redirects a package to one of its descendants.
type NavigationConfig struct {
	PointsTo SubpackageID `json:"points_to"`
}

// Subpackage is a named, non-root Package.
type Subpackage struct {
	Name Name `json:"name"`
	Package
}

// SDKConfig carries capability flags derived from the shipped endpoints.
type SDKConfig struct {
	IsAuthMandatory          bool            `json:"is_auth_mandatory"`
	HasStreamingEndpoints    bool            `json:"has_streaming_endpoints"`
	HasFileDownloadEndpoints bool            `json:"has_file_download_endpoints"`
	PlatformHeaders          PlatformHeaders `json:"platform_headers"`
}

// PlatformHeaders name the headers SDKs send to identify themselves.
type PlatformHeaders struct {
	Language   string `json:"language"`
	SDKName    string `json:"sdk_name"`
	SDKVersion string `json:"sdk_version"`
}
