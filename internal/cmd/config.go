package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/salmonumbrella/jumpviz/internal/config"
	"github.com/salmonumbrella/jumpviz/internal/output"
	"github.com/salmonumbrella/jumpviz/internal/secrets"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage configuration stored in ~/.config/jumpviz/config.yaml.

Keys: data_dir, labels_dir, static_dir, port, review_token,
keyring_backend and output_format. Flags and JUMPVIZ_* environment
variables take precedence over these values.

Examples:
  jumpviz config set data_dir ~/jump/results
  jumpviz config set port 8080
  jumpviz config unset review_token`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfigFromFlag()
		if err != nil {
			return formatConfigLoadError(err)
		}
		ctx := commandContext(cmd)
		if structuredOutputRequested() {
			return printStructured(ctx, configOutput(cfg))
		}

		out := stdoutFromContext(ctx)
		fmt.Fprintln(out, "Config:")
		for _, key := range supportedConfigKeys() {
			fmt.Fprintf(out, "  %s: %s\n", key, configDisplayValue(cfg, key))
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Unset a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List supported configuration keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		keys := supportedConfigKeys()
		sort.Strings(keys)

		if structuredOutputRequested() {
			return printStructured(commandContext(cmd), keys)
		}

		out := stdoutFromContext(commandContext(cmd))
		fmt.Fprintln(out, "Supported keys:")
		for _, key := range keys {
			fmt.Fprintf(out, "  %s\n", key)
		}
		return nil
	},
}

func configPath() (string, error) {
	if strings.TrimSpace(configFile) != "" {
		return configFile, nil
	}
	return config.DefaultConfigPath()
}

func supportedConfigKeys() []string {
	return []string{
		"data_dir",
		"labels_dir",
		"static_dir",
		"port",
		"review_token",
		"keyring_backend",
		"output_format",
	}
}

func applyConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "data_dir":
		cfg.DataDir = value
	case "labels_dir":
		cfg.LabelsDir = value
	case "static_dir":
		cfg.StaticDir = value
	case "port":
		port, err := strconv.Atoi(value)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("invalid port %q (expected 1-65535)", value)
		}
		cfg.Port = port
	case "review_token":
		cfg.ReviewToken = value
	case "keyring_backend":
		switch value {
		case secrets.BackendAuto, secrets.BackendKeychain, secrets.BackendFile:
		default:
			return fmt.Errorf("invalid keyring_backend %q (expected auto|keychain|file)", value)
		}
		cfg.KeyringBackend = value
	case "output_format":
		if _, err := output.ParseFormat(value); err != nil {
			return err
		}
		cfg.OutputFormat = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func clearConfigValue(cfg *config.Config, key string) error {
	switch key {
	case "data_dir":
		cfg.DataDir = ""
	case "labels_dir":
		cfg.LabelsDir = ""
	case "static_dir":
		cfg.StaticDir = ""
	case "port":
		cfg.Port = 0
	case "review_token":
		cfg.ReviewToken = ""
	case "keyring_backend":
		cfg.KeyringBackend = ""
	case "output_format":
		cfg.OutputFormat = ""
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// configDisplayValue renders one key for `config show`, masking the token.
func configDisplayValue(cfg *config.Config, key string) string {
	switch key {
	case "data_dir":
		return cfg.DataDir
	case "labels_dir":
		return cfg.LabelsDir
	case "static_dir":
		return cfg.StaticDir
	case "port":
		if cfg.Port == 0 {
			return ""
		}
		return strconv.Itoa(cfg.Port)
	case "review_token":
		if cfg.ReviewToken == "" {
			return ""
		}
		return maskToken(cfg.ReviewToken)
	case "keyring_backend":
		return cfg.KeyringBackend
	case "output_format":
		return cfg.OutputFormat
	}
	return ""
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configKeysCmd)

	rootCmd.AddCommand(configCmd)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := strings.ToLower(strings.TrimSpace(args[0]))
	value := strings.TrimSpace(args[1])

	cfg, err := loadConfigFromFlag()
	if err != nil {
		return formatConfigLoadError(err)
	}

	if err := applyConfigValue(cfg, key, value); err != nil {
		return err
	}

	path, err := configPath()
	if err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return err
	}

	if structuredOutputRequested() {
		return printStructured(commandContext(cmd), map[string]string{
			"status": "updated",
			"key":    key,
			"value":  configDisplayValue(cfg, key),
		})
	}

	fmt.Fprintf(stdoutFromContext(commandContext(cmd)), "Updated %s\n", key)
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	key := strings.ToLower(strings.TrimSpace(args[0]))

	cfg, err := loadConfigFromFlag()
	if err != nil {
		return formatConfigLoadError(err)
	}

	if err := clearConfigValue(cfg, key); err != nil {
		return err
	}

	path, err := configPath()
	if err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return err
	}

	if structuredOutputRequested() {
		return printStructured(commandContext(cmd), map[string]string{
			"status": "unset",
			"key":    key,
		})
	}

	fmt.Fprintf(stdoutFromContext(commandContext(cmd)), "Unset %s\n", key)
	return nil
}

func configOutput(cfg *config.Config) map[string]interface{} {
	out := map[string]interface{}{
		"review_token_set": cfg.ReviewToken != "",
	}
	for _, key := range supportedConfigKeys() {
		out[key] = configDisplayValue(cfg, key)
	}
	if cfg.Port != 0 {
		out["port"] = cfg.Port
	}
	return out
}
