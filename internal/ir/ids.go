package ir

// TypeID identifies a type declaration.
type TypeID string

// ErrorID identifies an error declaration.
type ErrorID string

// ServiceID identifies an HTTP service (one per declaration file).
type ServiceID string

// EndpointID identifies an endpoint within the whole API.
type EndpointID string

// SubpackageID identifies a node of the package tree.
type SubpackageID string

// VariableID identifies a root-level variable.
type VariableID string

// EnvironmentID identifies a configured environment.
type EnvironmentID string

// Id formats:
//
//	type_<path>:<Name>
//	error_<path>:<Name>
//	service_<path>
//	endpoint_<path>.<name>
//	subpackage_<path>
//
// where <path> is Filepath.Key(). Ids depend on original names only, so they
// are stable across runs and across casing generators.

// NewTypeID derives the id of a type declared as name in path.
func NewTypeID(path Filepath, name string) TypeID {
	return TypeID("type_" + path.Key() + ":" + name)
}

// NewErrorID derives the id of an error declared as name in path.
func NewErrorID(path Filepath, name string) ErrorID {
	return ErrorID("error_" + path.Key() + ":" + name)
}

// NewServiceID derives the id of the service declared in path.
func NewServiceID(path Filepath) ServiceID {
	return ServiceID("service_" + path.Key())
}

// NewEndpointID derives the id of endpoint name in the service at path.
func NewEndpointID(path Filepath, name string) EndpointID {
	return EndpointID("endpoint_" + path.Key() + "." + name)
}

// NewSubpackageID derives the id of the package tree node for path.
func NewSubpackageID(path Filepath) SubpackageID {
	return SubpackageID("subpackage_" + path.Key())
}

// DeclaredTypeName is the fully qualified name of a type.
type DeclaredTypeName struct {
	TypeID   TypeID   `json:"type_id"`
	Filepath Filepath `json:"filepath"`
	Name     Name     `json:"name"`
}

// DeclaredErrorName is the fully qualified name of an error.
type DeclaredErrorName struct {
	ErrorID  ErrorID  `json:"error_id"`
	Filepath Filepath `json:"filepath"`
	Name     Name     `json:"name"`
}

// DeclaredServiceName is the fully qualified name of a service.
type DeclaredServiceName struct {
	ServiceID ServiceID `json:"service_id"`
	Filepath  Filepath  `json:"filepath"`
}
