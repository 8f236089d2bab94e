package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/tessro/onair/internal/config"
	apperrors "github.com/tessro/onair/internal/errors"
)

const configHeader = "# On Air Configuration\n\n"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Commands for viewing and editing onair configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration, including defaults and environment overrides.`,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE:  runConfigPath,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long:  `Open the configuration file in your default editor.`,
	RunE:  runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long:  `Create a new configuration file with default values.`,
	RunE:  runConfigInit,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Common keys:
  station.stream_url       Live stream URL
  station.now_playing_url  Now-playing endpoint (empty to disable)
  station.use_icy          Read titles from stream metadata (true/false)
  playback.volume          Start volume (0-100)
  playback.max_retries     Reconnect attempts before giving up
  podcasts.feeds           Comma-separated RSS feed URLs
  audio.backend            vlc or null
  media_session.enabled    OS media keys (true/false)
  log.level                debug, info, warn or error

Examples:
  onair config set playback.volume 60
  onair config set podcasts.feeds "https://example.org/a.xml,https://example.org/b.xml"`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(cfg)
	}

	encoder := toml.NewEncoder(os.Stdout)
	encoder.Indent = "  "
	return encoder.Encode(cfg)
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path := getConfigPath()
	_, err := os.Stat(path)
	exists := err == nil

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"path":   path,
			"exists": exists,
		})
	}
	if !exists {
		fmt.Printf("%s (not created)\n", path)
		return nil
	}
	Minimal(path)
	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return apperrors.WithSuggestion(
			fmt.Errorf("config file not found at %s", configPath),
			"Run 'onair config init' first")
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		for _, e := range []string{"nano", "vim", "vi"} {
			if _, err := exec.LookPath(e); err == nil {
				editor = e
				break
			}
		}
	}
	if editor == "" {
		return fmt.Errorf("no editor found. Set EDITOR environment variable")
	}

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	return editorCmd.Run()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists at %s", configPath)
	}

	if err := writeConfigFile(configPath, config.Default()); err != nil {
		return err
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]string{
			"status": "created",
			"path":   configPath,
		})
	}
	fmt.Printf("Created config file: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Add podcast feeds: onair config set podcasts.feeds <url>[,<url>...]")
	fmt.Println("  2. Run 'onair ui' to start listening")
	return nil
}

func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if path := config.FindConfigFile(); path != "" {
		return path
	}
	return config.DefaultPath()
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	configPath := getConfigPath()

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return apperrors.WithSuggestion(
			fmt.Errorf("config file not found at %s", configPath),
			"Run 'onair config init' first")
	}
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	raw := make(map[string]any)
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	if err := setValue(raw, key, value); err != nil {
		return err
	}

	// Reject values the loader would refuse before they reach disk.
	if err := checkRaw(raw); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidConfig, err)
	}

	if err := writeConfigFile(configPath, raw); err != nil {
		return err
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]string{
			"status": "updated",
			"key":    key,
			"value":  value,
		})
	}
	fmt.Printf("Set %s = %s\n", key, value)
	return nil
}

var (
	intKeys = map[string]bool{
		"station.poll_interval":   true,
		"playback.volume":         true,
		"playback.max_retries":    true,
		"playback.retry_delay_ms": true,
		"podcasts.timeout":        true,
		"audio.network_caching":   true,
		"tui.refresh_interval":    true,
	}
	boolKeys = map[string]bool{
		"station.use_icy":       true,
		"playback.autoplay":     true,
		"media_session.enabled": true,
	}
	listKeys = map[string]bool{
		"podcasts.feeds": true,
	}
)

// setValue stores value under a "section.field" key in a decoded TOML
// document, typed to match the config schema.
func setValue(raw map[string]any, key, value string) error {
	section, field, ok := strings.Cut(key, ".")
	if !ok || section == "" || field == "" || strings.Contains(field, ".") {
		return fmt.Errorf("invalid key format. Use 'section.key' (e.g., playback.volume)")
	}

	var typed any
	switch {
	case intKeys[key]:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("value must be an integer for %s", key)
		}
		typed = i
	case boolKeys[key]:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("value must be true or false for %s", key)
		}
		typed = b
	case listKeys[key]:
		items := []string{}
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		typed = items
	default:
		typed = value
	}

	sectionMap, ok := raw[section].(map[string]any)
	if !ok {
		sectionMap = make(map[string]any)
		raw[section] = sectionMap
	}
	sectionMap[field] = typed
	return nil
}

// checkRaw round-trips a raw document through the typed config.
func checkRaw(raw map[string]any) error {
	var buf strings.Builder
	if err := toml.NewEncoder(&buf).Encode(raw); err != nil {
		return err
	}
	c := config.Default()
	if _, err := toml.Decode(buf.String(), c); err != nil {
		return err
	}
	c.ApplyDefaults()
	return c.Validate()
}

func writeConfigFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	defer func() { _ = f.Close() }()

	return encodeConfig(f, v)
}

func encodeConfig(w io.Writer, v any) error {
	if _, err := io.WriteString(w, configHeader); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	encoder := toml.NewEncoder(w)
	encoder.Indent = "  "
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
