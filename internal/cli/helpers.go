package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/glorpus-work/digipathos/internal/logger"
	"github.com/glorpus-work/digipathos/pkg/archive"
	"github.com/glorpus-work/digipathos/pkg/catalog"
	"github.com/glorpus-work/digipathos/pkg/config"
	"github.com/glorpus-work/digipathos/pkg/download"
	"github.com/glorpus-work/digipathos/pkg/hooks"
	"github.com/glorpus-work/digipathos/pkg/orchestrator"
	"github.com/glorpus-work/digipathos/pkg/verify"
)

// These variables will be set by the main package
var (
	ConfigPath   *string
	Verbose      *bool
	NoColor      *bool
	OutputFormat *string
)

// loadConfig resolves the configuration for a command: defaults, config file,
// .env and DIGIPATHOS_* variables, then the global flags. It also sets up logging.
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	configPath := getConfigPath()
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if OutputFormat != nil && *OutputFormat != "" {
		cfg.Settings.OutputFormat = *OutputFormat
	}
	if Verbose != nil && *Verbose {
		cfg.Settings.LogLevel = "debug"
	}
	if NoColor != nil && *NoColor {
		color.NoColor = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.InitLogger(cfg.Settings.LogLevel, logger.OutputFormat(cfg.Settings.OutputFormat))
	logger.Debug("Configuration loaded", logger.Fields{"path": configPath})
	return cfg, nil
}

func getConfigPath() string {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath
	}

	defaultPath, err := config.GetDefaultConfigPath()
	if err != nil {
		// An empty path causes a more descriptive error when the file is read or written.
		logger.Warn("Failed to get default config path, using empty path", logger.Fields{"error": err.Error()})
		return ""
	}
	return defaultPath
}

func isJSON(cfg *config.Config) bool {
	return strings.EqualFold(cfg.Settings.OutputFormat, "json")
}

func loadCatalogClient(cfg *config.Config) *catalog.Client {
	return catalog.NewClient(cfg.Settings.BaseURL, cfg.Settings.ListPath, cfg.Settings.HTTPTimeout)
}

func loadDownloadManager(cfg *config.Config) *download.ManagerImpl {
	return download.NewManager(cfg.Settings.BaseURL, cfg.Settings.HTTPTimeout, userAgent())
}

// loadHookManager returns nil when no hook script is configured.
func loadHookManager(cfg *config.Config) (*hooks.DefaultHookManager, error) {
	if cfg.Hooks.PostExtract == "" && cfg.Hooks.PostDataset == "" {
		return nil, nil
	}
	manager := hooks.NewHookManager()
	err := hooks.LoadFromFiles(manager, map[hooks.HookType]string{
		hooks.PostExtract: cfg.Hooks.PostExtract,
		hooks.PostDataset: cfg.Hooks.PostDataset,
	})
	if err != nil {
		return nil, err
	}
	return manager, nil
}

func loadOrchestrator(cfg *config.Config, onEvent func(orchestrator.Event)) (*orchestrator.Orchestrator, error) {
	orch := &orchestrator.Orchestrator{
		Catalog:   loadCatalogClient(cfg),
		DL:        loadDownloadManager(cfg),
		Validator: verify.NewVerifier(),
		Extractor: archive.NewManager(),
		Hooks:     orchestrator.Hooks{OnEvent: onEvent},
	}
	scripts, err := loadHookManager(cfg)
	if err != nil {
		return nil, err
	}
	if scripts != nil {
		orch.Scripts = scripts
	}
	return orch, nil
}

func userAgent() string {
	return "digipathos/" + Version
}
