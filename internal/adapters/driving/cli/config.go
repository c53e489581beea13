package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/ragline/internal/core/domain"
	"github.com/custodia-labs/ragline/internal/core/services"
)

var (
	configShowJSON      bool
	configValidatePings bool
)

// secretNames are the environment variables set-secret may write.
var secretNames = []string{services.EnvOpenAIKey, services.EnvAnthropicKey, services.EnvOllamaHost}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change ragline settings. Settings live in a TOML file using
dot-notation keys (for example chunk.size). API keys are read from the
environment or from the .env file next to the config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print the effective value of a key",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Validate and save a setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List supported keys",
	Args:  cobra.NoArgs,
	RunE:  runConfigKeys,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check settings and optionally ping providers",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

var configSetSecretCmd = &cobra.Command{
	Use:   "set-secret [name]",
	Short: "Store an API key in the .env file",
	Long: fmt.Sprintf(`Reads a secret without echoing it and stores it in the .env file next to
the config file. Supported names: %s.`, strings.Join(secretNames, ", ")),
	Args: cobra.ExactArgs(1),
	RunE: runConfigSetSecret,
}

func init() {
	configShowCmd.Flags().BoolVar(&configShowJSON, "json", false, "output settings as JSON")
	configCmd.Flags().BoolVar(&configShowJSON, "json", false, "output settings as JSON")
	configValidateCmd.Flags().BoolVar(&configValidatePings, "ping", false, "also contact the configured providers")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configKeysCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetSecretCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return notConfigured("settings service")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if configShowJSON {
		return writeJSON(cmd, settings)
	}

	cmd.Println(headerStyle.Render("[Chunking]"))
	cmd.Printf("  Size: %d  Overlap: %d\n\n", settings.Chunk.Size, settings.Chunk.Overlap)

	cmd.Println(headerStyle.Render("[Embedding]"))
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider)
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Dimensions > 0 {
		cmd.Printf("  Dimensions: %d\n", settings.Embedding.Dimensions)
	}
	cmd.Printf("  Concurrency: %d  Retries: %d\n", settings.Embedding.MaxConcurrency, settings.Embedding.MaxRetries)
	printKeyStatus(cmd, settings.Embedding.Provider, settings.Embedding.APIKey, settings.Embedding.IsConfigured())
	cmd.Println()

	cmd.Println(headerStyle.Render("[Generation]"))
	cmd.Printf("  Provider: %s\n", settings.Generation.Provider)
	cmd.Printf("  Model: %s\n", settings.Generation.Model)
	if settings.Generation.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Generation.BaseURL)
	}
	printKeyStatus(cmd, settings.Generation.Provider, settings.Generation.APIKey, settings.Generation.IsConfigured())
	cmd.Println()

	cmd.Println(headerStyle.Render("[Index]"))
	cmd.Printf("  Backend: %s  Metric: %s\n\n", settings.Index.Backend, settings.Index.Metric)

	cmd.Println(headerStyle.Render("[Ingest]"))
	cmd.Printf("  URL content types: %s\n", strings.Join(settings.Ingest.ExpectedContentTypes, ", "))
	cmd.Printf("  Item timeout: %s  Replace existing: %t\n\n", settings.Ingest.ItemTimeout, settings.Ingest.ReplaceExisting)

	cmd.Println(headerStyle.Render("[Retrieval]"))
	cmd.Printf("  Top k: %d\n\n", settings.Retrieval.TopK)

	if err := settings.Validate(); err != nil {
		cmd.Printf("%s %v\n", failureStyle.Render("Warning:"), err)
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func printKeyStatus(cmd *cobra.Command, p domain.AIProvider, key string, configured bool) {
	if p.RequiresAPIKey() {
		if key != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(key))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := successStyle.Render("configured")
	if !configured {
		status = failureStyle.Render("not configured")
	}
	cmd.Printf("  Status: %s\n", status)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return notConfigured("settings service")
	}

	value, err := settingsService.Value(args[0])
	if err != nil {
		return err
	}
	cmd.Println(value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return notConfigured("settings service")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("%s = %s\n", args[0], args[1])
	return nil
}

func runConfigKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return notConfigured("settings service")
	}

	for _, k := range settingsService.Keys() {
		cmd.Println(k)
	}
	return nil
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return notConfigured("settings service")
	}

	if err := settingsService.Validate(); err != nil {
		return err
	}
	if configValidatePings {
		if err := settingsService.ValidateProviders(); err != nil {
			return fmt.Errorf("provider check failed: %w", err)
		}
		cmd.Println("Providers reachable.")
	}
	cmd.Println("Configuration is valid.")
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return notConfigured("settings service")
	}
	cmd.Println(settingsService.Path())
	return nil
}

func runConfigSetSecret(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return notConfigured("settings service")
	}

	name := strings.ToUpper(args[0])
	if !slices.Contains(secretNames, name) {
		return fmt.Errorf("%w: unsupported secret %q (use one of %s)",
			domain.ErrInvalidInput, args[0], strings.Join(secretNames, ", "))
	}

	cmd.Printf("Enter %s: ", name)
	value, err := readSecret(cmd.InOrStdin())
	cmd.Println()
	if err != nil {
		return fmt.Errorf("read secret: %w", err)
	}
	if value == "" {
		return errors.New("secret is empty")
	}

	path := envFilePath()
	if err := writeEnvValue(path, name, value); err != nil {
		return err
	}
	cmd.Printf("%s saved to %s\n", name, path)
	return nil
}

// envFilePath is the .env file next to the config file.
func envFilePath() string {
	return filepath.Join(filepath.Dir(settingsService.Path()), ".env")
}

// readSecret reads without echo from a terminal, or one line otherwise.
func readSecret(in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// writeEnvValue sets one variable in a dotenv file, keeping the others.
func writeEnvValue(path, name, value string) error {
	values, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("read %s: %w", path, err)
		}
		values = make(map[string]string)
	}
	values[name] = value

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if err := godotenv.Write(values, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return os.Chmod(path, 0o600)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
