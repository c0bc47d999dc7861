package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"server"`

	Index struct {
		Backend      string `yaml:"backend"`
		DatabaseURL  string `yaml:"database_url"`
		TableName    string `yaml:"table_name"`
		VectorDim    int    `yaml:"vector_dim"`
		EmbedModel   string `yaml:"embed_model"`
		EmbedBaseURL string `yaml:"embed_base_url"`
	} `yaml:"index"`

	Chunker struct {
		ChunkSize    int `yaml:"chunk_size"`
		ChunkOverlap int `yaml:"chunk_overlap"`
	} `yaml:"chunker"`

	Retrieval struct {
		TopK                int     `yaml:"top_k"`
		TopKPerPlatform     int     `yaml:"top_k_per_platform"`
		SimilarityThreshold float64 `yaml:"similarity_threshold"`
	} `yaml:"retrieval"`

	Scraper struct {
		DataDir   string            `yaml:"data_dir"`
		RateLimit float64           `yaml:"rate_limit"`
		MaxPages  int               `yaml:"max_pages"`
		DocsURLs  map[string]string `yaml:"docs_urls"`
	} `yaml:"scraper"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/cdpchat/config.yaml"),
			"/etc/cdpchat/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	// Merge with environment variables
	mergeWithEnv(&config)

	// Apply defaults for unset values
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	mergeWithEnv(config)
	applyDefaults(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.Server.Host == "" {
		config.Server.Host = "0.0.0.0"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 5000
	}

	if config.Index.Backend == "" {
		config.Index.Backend = "bleve"
	}
	if config.Index.TableName == "" {
		config.Index.TableName = "cdp_chunks"
	}
	if config.Index.VectorDim == 0 {
		config.Index.VectorDim = 768
	}
	if config.Index.EmbedModel == "" {
		config.Index.EmbedModel = "nomic-embed-text:latest"
	}
	if config.Index.EmbedBaseURL == "" {
		config.Index.EmbedBaseURL = "http://localhost:11434"
	}

	if config.Chunker.ChunkSize == 0 {
		config.Chunker.ChunkSize = 1000
	}
	if config.Chunker.ChunkOverlap == 0 {
		config.Chunker.ChunkOverlap = 200
	}

	if config.Retrieval.TopK == 0 {
		config.Retrieval.TopK = 5
	}
	if config.Retrieval.TopKPerPlatform == 0 {
		config.Retrieval.TopKPerPlatform = 3
	}
	if config.Retrieval.SimilarityThreshold == 0 {
		config.Retrieval.SimilarityThreshold = 0.7
	}

	if config.Scraper.DataDir == "" {
		config.Scraper.DataDir = "data/raw"
	}
	if config.Scraper.RateLimit == 0 {
		config.Scraper.RateLimit = 2.0
	}
	if config.Scraper.MaxPages == 0 {
		config.Scraper.MaxPages = 200
	}
	if len(config.Scraper.DocsURLs) == 0 {
		config.Scraper.DocsURLs = map[string]string{
			"segment":   "https://segment.com/docs/",
			"mparticle": "https://docs.mparticle.com/",
			"lytics":    "https://docs.lytics.com/",
			"zeotap":    "https://docs.zeotap.com/home/en-us/",
		}
	}
}

func mergeWithEnv(config *Config) {
	if host := os.Getenv("API_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("API_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Index.DatabaseURL = dbURL
	}
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		config.Index.EmbedBaseURL = baseURL
	}
}
