package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	EmbedLLM     LLMConfig      `yaml:"embed_llm"`
	InferenceLLM LLMConfig      `yaml:"inference_llm"`
	VectorDB     VectorDBConfig `yaml:"vector_db"`
	Database     DatabaseConfig `yaml:"database"`
	RAG          RAGConfig      `yaml:"rag"`
}

// LLMConfig holds the settings for one model endpoint, either the
// embedding model or the inference model.
type LLMConfig struct {
	Provider string `yaml:"provider"` // ollama, openai (default: openai)
	BaseURL  string `yaml:"base_url"`
	Key      string `yaml:"key"`
	Model    string `yaml:"model"`
}

type VectorDBConfig struct {
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
	InMemory   bool   `yaml:"in_memory"`
}

type DatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	Password string `yaml:"password"`
	Debug    bool   `yaml:"debug"`
}

type RAGConfig struct {
	DDLResults     int `yaml:"ddl_results"`
	ExampleResults int `yaml:"example_results"`
}

const (
	defaultDDLResults     = 5
	defaultExampleResults = 3
	defaultCollection     = "sql_knowledge"
	defaultVectorDBPath   = "./chromemdb"
)

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Substitute env variables of the form ${VAR} and ${VAR:-default}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.EmbedLLM.Provider == "" {
		c.EmbedLLM.Provider = "openai"
	}
	if c.InferenceLLM.Provider == "" {
		c.InferenceLLM.Provider = "openai"
	}
	if c.VectorDB.Path == "" {
		c.VectorDB.Path = defaultVectorDBPath
	}
	if c.VectorDB.Collection == "" {
		c.VectorDB.Collection = defaultCollection
	}
	if c.RAG.DDLResults <= 0 {
		c.RAG.DDLResults = defaultDDLResults
	}
	if c.RAG.ExampleResults <= 0 {
		c.RAG.ExampleResults = defaultExampleResults
	}
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
