package service

// ServiceType names a model server protocol.
type ServiceType string

const (
	ServiceTypeTFServing ServiceType = "tfserving" // TensorFlow Serving REST API
)

// ServiceConfig describes a remote model server.
type ServiceConfig struct {
	Type ServiceType

	// Endpoint is the REST base URL, e.g. "http://localhost:8501".
	// A bare host:port gets an http:// prefix.
	Endpoint string

	ModelName    string
	ModelVersion string

	// SignatureName defaults to "serving_default".
	SignatureName string

	// OutputName selects the embedding output of a multi-output model.
	OutputName string

	// Timeout in seconds, 0 means 30.
	Timeout int

	Auth *AuthConfig
}

// AuthConfig holds model server credentials.
type AuthConfig struct {
	Type     string // "basic", "bearer", "api_key"
	Username string
	Password string
	Token    string
	APIKey   string
}
