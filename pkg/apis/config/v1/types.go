package v1

type LifeOSConfig struct {
	Server  ServerConfig  `yaml:"server"`
	Uploads UploadsConfig `yaml:"uploads"`
	AI      AIConfig      `yaml:"ai"`
}

type ServerConfig struct {
	// BaseURL is the externally visible URL of the deployment, used when
	// building absolute links such as avatar URLs and OAuth redirects.
	BaseURL string `yaml:"baseURL"`

	// AllowedOrigins are the origins permitted for cross-origin API calls.
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
}

type UploadsConfig struct {
	// Dir is the directory profile images are written to.
	Dir string `yaml:"dir"`

	// MaxImageBytes caps accepted profile image uploads.
	MaxImageBytes int64 `yaml:"maxImageBytes,omitempty"`
}

type AIConfig struct {
	// ChatModel overrides the default chat model.
	ChatModel string `yaml:"chatModel,omitempty"`

	// EmbeddingModel overrides the default embedding model.
	EmbeddingModel string `yaml:"embeddingModel,omitempty"`
}
