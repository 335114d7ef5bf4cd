package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	ImagesConfig struct {
		DefaultWidth       float64       `yaml:"default_width" validate:"gt=0"`
		DefaultHeight      float64       `yaml:"default_height" validate:"gt=0"`
		AutoFallbackHeight float64       `yaml:"auto_fallback_height" validate:"gt=0"`
		ConvertUnsupported bool          `yaml:"convert_unsupported"`
		JPEGQuality        int           `yaml:"jpeq_quality_level" validate:"min=40,max=100"`
		FetchRemote        bool          `yaml:"fetch_remote"`
		FetchTimeout       time.Duration `yaml:"fetch_timeout" validate:"gte=0"`
	}

	FontsConfig struct {
		// Names maps font names used by authors to names Word expects.
		Names map[string]string `yaml:"names"`
	}

	DocumentConfig struct {
		FixZip                bool         `yaml:"fix_zip"`
		OutputNameTemplate    string       `yaml:"output_name_template"`
		FileNameTransliterate bool         `yaml:"file_name_transliterate"`
		Creator               string       `yaml:"creator"`
		Images                ImagesConfig `yaml:"images"`
		Fonts                 FontsConfig  `yaml:"fonts"`
	}

	ImportConfig struct {
		Grouping         string   `yaml:"grouping" validate:"oneof=single with-content until-next heading-then-content merge-same-style"`
		HeadingPattern   string   `yaml:"heading_pattern"`
		HeadingLevel     int      `yaml:"heading_level" validate:"min=1,max=6"`
		RequireBold      bool     `yaml:"require_bold"`
		MaxParagraphs    int      `yaml:"max_paragraphs" validate:"gte=0"`
		Placeholders     []string `yaml:"placeholders" validate:"dive,required"`
		AutoConvertToAI  bool     `yaml:"auto_convert_to_ai"`
		AIPromptTemplate string   `yaml:"ai_prompt_template"`
		KeepImages       bool     `yaml:"keep_images"`
	}

	AIConfig struct {
		BaseURL      string        `yaml:"base_url" validate:"omitempty,url"`
		APIKey       SecretString  `yaml:"api_key"`
		Model        string        `yaml:"model" validate:"required"`
		Temperature  float64       `yaml:"temperature" validate:"gte=0,lte=2"`
		MaxTokens    int           `yaml:"max_tokens" validate:"min=1,max=8192"`
		Timeout      time.Duration `yaml:"timeout" validate:"gte=0"`
		SystemPrompt string        `yaml:"system_prompt"`
	}

	StorageConfig struct {
		Path string `yaml:"path" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Document  DocumentConfig `yaml:"document"`
		Import    ImportConfig   `yaml:"import"`
		AI        AIConfig       `yaml:"ai"`
		Storage   StorageConfig  `yaml:"storage"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above, alternative is to use struct
	// field name and reflection which I want to avoid for now
	OutputNameTemplateFieldName TemplateFieldName = "output_name_template"
	AIPromptTemplateFieldName   TemplateFieldName = "ai_prompt_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
	gencfg.WithDoNotExpandField(string(AIPromptTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
