// Package file provides the TOML-backed configuration store. The
// config file is watched with fsnotify so edits take effect without a
// restart; credentials can always be supplied through the environment
// instead of the file.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/raglite/raglite/internal/logger"
)

// Environment variables that override file-configured credentials.
const (
	EnvDeepseekAPIKey = "RAGLITE_DEEPSEEK_API_KEY"
	EnvOpenAIAPIKey   = "RAGLITE_OPENAI_API_KEY"
)

// Config is the full application configuration. Zero values are filled
// in from Default() on load, so a partial TOML file is fine.
type Config struct {
	// Provider selects the completion backend: "ollama" or "deepseek".
	Provider string `toml:"provider"`

	// Embedder selects the embedding backend: "ollama" or "openai".
	Embedder string `toml:"embedder"`

	// DataDir holds the sqlite database.
	DataDir string `toml:"data_dir"`

	// SystemPrompt overrides the built-in assistant persona.
	SystemPrompt string `toml:"system_prompt"`

	Server    ServerConfig    `toml:"server"`
	Ollama    OllamaConfig    `toml:"ollama"`
	Deepseek  DeepseekConfig  `toml:"deepseek"`
	OpenAI    OpenAIConfig    `toml:"openai"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Ingest    IngestConfig    `toml:"ingest"`
	Chat      ChatConfig      `toml:"chat"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// OllamaConfig configures the local Ollama backend.
type OllamaConfig struct {
	BaseURL    string `toml:"base_url"`
	ChatModel  string `toml:"chat_model"`
	EmbedModel string `toml:"embed_model"`
}

// DeepseekConfig configures the DeepSeek completion backend.
type DeepseekConfig struct {
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
	APIKey  string `toml:"api_key"`
}

// OpenAIConfig configures the OpenAI embedding backend.
type OpenAIConfig struct {
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
	APIKey  string `toml:"api_key"`
}

// RetrievalConfig tunes hybrid retrieval and context assembly.
type RetrievalConfig struct {
	TopK               int     `toml:"top_k"`
	Alpha              float64 `toml:"alpha"`
	RelevanceThreshold float64 `toml:"relevance_threshold"`
	MaxContextChars    int     `toml:"max_context_chars"`
	ContextTopN        int     `toml:"context_top_n"`
	CacheSize          int     `toml:"cache_size"`
}

// IngestConfig tunes chunking and bulk embedding.
type IngestConfig struct {
	MinTokens      int     `toml:"min_tokens"`
	MaxTokens      int     `toml:"max_tokens"`
	FlatChunkSize  int     `toml:"flat_chunk_size"`
	EmbedBatchSize int     `toml:"embed_batch_size"`
	EmbedRate      float64 `toml:"embed_rate"`
}

// ChatConfig tunes generation.
type ChatConfig struct {
	Temperature float64 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Provider: "ollama",
		Embedder: "ollama",
		DataDir:  "",
		Server:   ServerConfig{Addr: "localhost:8080"},
		Ollama: OllamaConfig{
			BaseURL:    "http://localhost:11434",
			ChatModel:  "llama3.2",
			EmbedModel: "nomic-embed-text",
		},
		Deepseek: DeepseekConfig{},
		OpenAI:   OpenAIConfig{Model: "text-embedding-3-small"},
		Retrieval: RetrievalConfig{
			TopK:               8,
			Alpha:              0.6,
			RelevanceThreshold: 0.4,
			MaxContextChars:    1200,
			ContextTopN:        2,
			CacheSize:          512,
		},
		Ingest: IngestConfig{
			MinTokens:      120,
			MaxTokens:      800,
			FlatChunkSize:  1000,
			EmbedBatchSize: 16,
			EmbedRate:      4,
		},
		Chat: ChatConfig{
			Temperature: 0.3,
			MaxTokens:   1024,
		},
	}
}

// Store loads the config file, serves point-in-time snapshots and
// re-reads the file when it changes on disk.
type Store struct {
	mu       sync.RWMutex
	filePath string
	current  Config
	onReload []func(Config)

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewStore loads configuration from configDir/config.toml. If
// configDir is empty it defaults to ~/.raglite. A missing file is not
// an error; defaults apply.
func NewStore(configDir string) (*Store, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		configDir = filepath.Join(home, ".raglite")
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	s := &Store{
		filePath: filepath.Join(configDir, "config.toml"),
		done:     make(chan struct{}),
	}

	cfg, err := s.load()
	if err != nil {
		return nil, err
	}
	s.current = cfg

	return s, nil
}

// Snapshot returns the current configuration.
func (s *Store) Snapshot() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Path returns the configuration file path.
func (s *Store) Path() string {
	return s.filePath
}

// OnReload registers fn to be called with the new configuration after
// every successful reload. Must be called before Watch.
func (s *Store) OnReload(fn func(Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onReload = append(s.onReload, fn)
}

// Watch starts watching the config directory for changes to the file.
// Edits that fail to parse are logged and ignored; the previous
// configuration stays active.
func (s *Store) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	// Watch the directory, not the file: editors typically replace the
	// file via rename, which drops a file-level watch.
	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch config directory: %w", err)
	}
	s.watcher = watcher

	go s.watchLoop()
	return nil
}

// Close stops the watcher if one is running.
func (s *Store) Close() error {
	close(s.done)
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

func (s *Store) watchLoop() {
	for {
		select {
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Name != s.filePath {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			s.reload()
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("config watcher error: %v", err)
		}
	}
}

func (s *Store) reload() {
	cfg, err := s.load()
	if err != nil {
		logger.Warn("config reload failed, keeping previous configuration: %v", err)
		return
	}

	s.mu.Lock()
	s.current = cfg
	callbacks := make([]func(Config), len(s.onReload))
	copy(callbacks, s.onReload)
	s.mu.Unlock()

	logger.Info("configuration reloaded from %s", s.filePath)
	for _, fn := range callbacks {
		fn(cfg)
	}
}

// load reads and parses the file on top of defaults, then applies
// environment overrides.
func (s *Store) load() (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(s.filePath)
	switch {
	case os.IsNotExist(err):
		// No file yet; defaults apply.
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

// applyEnvOverrides lets credentials live outside the config file.
func applyEnvOverrides(cfg *Config) {
	if key := os.Getenv(EnvDeepseekAPIKey); key != "" {
		cfg.Deepseek.APIKey = key
	}
	if key := os.Getenv(EnvOpenAIAPIKey); key != "" {
		cfg.OpenAI.APIKey = key
	}
}
