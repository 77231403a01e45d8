package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/MMMZZYz/aitest/internal/classify"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config.yaml"

type Config struct {
	LLM     LLMConfig       `yaml:"llm"`
	Cases   CasesConfig     `yaml:"cases"`
	Output  OutputConfig    `yaml:"output"`
	MindMap MindMapConfig   `yaml:"mindmap"`
	Modules []classify.Rule `yaml:"modules"`
}

type LLMConfig struct {
	Provider    string  `yaml:"provider"` // openai (any compatible endpoint) | gemini
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	VisionModel string  `yaml:"vision_model"`
	Temperature float64 `yaml:"temperature"`
	MaxAttempts int     `yaml:"max_attempts"`
	// ContextFile holds optional business background added to prompts.
	ContextFile string `yaml:"context_file"`
}

type CasesConfig struct {
	Template    string `yaml:"template"`
	Sheet       string `yaml:"sheet"`
	Model       string `yaml:"model"` // empty means llm.model
	Concurrency int    `yaml:"concurrency"`
	Cache       string `yaml:"cache"` // SQLite path; empty disables caching
}

type OutputConfig struct {
	Dir        string `yaml:"dir"`
	SavePrompt bool   `yaml:"save_prompt"`
}

type MindMapConfig struct {
	RootTitle    string `yaml:"root_title"`
	Placeholders bool   `yaml:"placeholders"`
	Tables       string `yaml:"tables"` // joined | rows | grouped
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    "openai",
			BaseURL:     "https://dashscope.aliyuncs.com/compatible-mode/v1",
			Model:       "qwen-plus",
			VisionModel: "qwen-vl-plus",
			Temperature: 0.2,
			MaxAttempts: 3,
			ContextFile: "context_goods.txt",
		},
		Cases: CasesConfig{
			Template:    "templates/用例模板.xlsx",
			Concurrency: 1,
			Cache:       "aitest.db",
		},
		Output: OutputConfig{
			Dir:        "outputs",
			SavePrompt: true,
		},
		MindMap: MindMapConfig{
			RootTitle:    "测试点",
			Placeholders: true,
			Tables:       "joined",
		},
	}
}

// LoadConfig reads .env, then the YAML file at path on top of the defaults,
// then environment overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	// 3. Override with Environment Variables if present
	cfg.applyEnv()
	cfg.normalize()
	return cfg, nil
}

func (c *Config) applyEnv() {
	overrides := []struct {
		key string
		dst *string
	}{
		{"DASHSCOPE_API_KEY", &c.LLM.APIKey},
		{"DASHSCOPE_BASE_URL", &c.LLM.BaseURL},
		{"DASHSCOPE_MODEL", &c.LLM.Model},
		{"DASHSCOPE_VISION_MODEL", &c.LLM.VisionModel},
		{"AITEST_LLM_PROVIDER", &c.LLM.Provider},
		{"QWEN_MODEL", &c.Cases.Model},
		{"CASES_TEMPLATE_PATH", &c.Cases.Template},
		{"OUTPUT_DIR", &c.Output.Dir},
	}
	for _, o := range overrides {
		if v := strings.TrimSpace(os.Getenv(o.key)); v != "" {
			*o.dst = v
		}
	}
	if v, ok := os.LookupEnv("SAVE_PROMPT"); ok {
		c.Output.SavePrompt = strings.ToLower(strings.TrimSpace(v)) != "0"
	}
	if v := os.Getenv("CASES_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Cases.Concurrency = n
		}
	}
}

func (c *Config) normalize() {
	if c.Cases.Concurrency < 1 {
		c.Cases.Concurrency = 1
	}
	if c.LLM.MaxAttempts < 1 {
		c.LLM.MaxAttempts = 1
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "outputs"
	}
	if len(c.Modules) == 0 {
		c.Modules = classify.DefaultRules()
	}
}

// CasesModel is the model used for case generation.
func (c *Config) CasesModel() string {
	if c.Cases.Model != "" {
		return c.Cases.Model
	}
	return c.LLM.Model
}

// Validate checks what LLM-backed commands need.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return fmt.Errorf("missing api key: set DASHSCOPE_API_KEY in .env or llm.api_key in the config file")
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return fmt.Errorf("missing llm.model")
	}
	return nil
}

// BusinessContext returns the contents of the context file, or "" when the
// file is not configured or absent.
func (c *Config) BusinessContext() string {
	if c.LLM.ContextFile == "" {
		return ""
	}
	data, err := os.ReadFile(c.LLM.ContextFile)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
