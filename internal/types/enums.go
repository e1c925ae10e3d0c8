package types

type Ecosystem string

const (
	EcosystemNpm     Ecosystem = "npm"
	EcosystemPyPI    Ecosystem = "pypi"
	EcosystemCargo   Ecosystem = "cargo"
	EcosystemGem     Ecosystem = "gem"
	EcosystemNuGet   Ecosystem = "nuget"
	EcosystemMaven   Ecosystem = "maven"
	EcosystemGolang  Ecosystem = "golang"
	EcosystemGitHub  Ecosystem = "github"
	EcosystemConda   Ecosystem = "conda"
	EcosystemGeneric Ecosystem = "generic"
)

type Method string

const (
	MethodNone     Method = ""
	MethodDirect   Method = "direct"
	MethodAPI      Method = "api"
	MethodFallback Method = "fallback"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Validation is the tri-state outcome of the URL validation step.
type Validation string

const (
	ValidationSkipped Validation = "skipped"
	ValidationPassed  Validation = "passed"
	ValidationFailed  Validation = "failed"
)

type ErrorKind string

const (
	ErrorKindParse      ErrorKind = "parse"
	ErrorKindHandler    ErrorKind = "handler"
	ErrorKindValidation ErrorKind = "validation"
)
