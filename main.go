package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/tr4cks/picled/led"
	"github.com/tr4cks/picled/modules"
	"github.com/tr4cks/picled/modules/devfile"
	"github.com/tr4cks/picled/modules/serial"
	"github.com/tr4cks/picled/modules/sysfs"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFilePath, "config", path.Join("/etc", fmt.Sprintf("%s.d", appName), "config.yaml"), "YAML configuration file")
	rootCmd.PersistentFlags().StringVarP(&moduleName, "module", "m", "devfile", "module used to drive the LED")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "log debug messages")
	tuiCmd.Flags().StringVar(&logFilePath, "log-file", "", "file receiving diagnostics while the terminal UI runs (default: stderr if redirected, else a file in the temp directory)")
}

const appName = "picled"

var (
	configFilePath string
	moduleName     string
	debug          bool
	logFilePath    string
	rootCmd        = &cobra.Command{
		Use:     appName,
		Short:   "Switch the LED of a PIC board on or off",
		Version: "1.0.0",
		Args:    cobra.NoArgs,
		Run:     run,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
)

type Config struct {
	Username string                 `yaml:"username" validate:"required_with=Password"`
	Password string                 `yaml:"password" validate:"required_with=Username"`
	Addr     string                 `yaml:"addr" validate:"required,hostname_port"`
	Metrics  bool                   `yaml:"metrics"`
	Discord  *DiscordBotConfig      `yaml:"discord" validate:"omitempty"`
	Module   map[string]interface{} `yaml:"module"`
}

func defaultConfig() Config {
	return Config{
		Addr:    ":8080",
		Metrics: true,
	}
}

// parseYAMLFile decodes filePath on top of the default configuration. A missing
// file leaves the defaults in place.
func parseYAMLFile(filePath string) (*Config, error) {
	config := defaultConfig()
	file, err := os.Open(filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return &config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()
	decoder := yaml.NewDecoder(file)
	err = decoder.Decode(&config)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("error decoding YAML file %q: %w", filePath, err)
	}
	return &config, nil
}

func loadConfig(filePath string) (*Config, error) {
	config, err := parseYAMLFile(filePath)
	if err != nil {
		return nil, err
	}
	validate := validator.New()
	err = validate.Struct(config)
	if err != nil {
		return nil, fmt.Errorf("error during configuration validation: %w", err)
	}
	return config, nil
}

func parseConfigFile(filePath string) *Config {
	config, err := loadConfig(filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration %q: %s\n", filePath, err)
		os.Exit(1)
	}
	return config
}

var internalModules = map[string]func() modules.Module{
	"devfile": devfile.New,
	"serial":  serial.New,
	"sysfs":   sysfs.New,
}

func newModule(config *Config, moduleName string) (modules.Module, error) {
	factory, ok := internalModules[moduleName]
	if !ok {
		moduleNames := make([]string, 0, len(internalModules))
		for moduleName := range internalModules {
			moduleNames = append(moduleNames, moduleName)
		}
		slices.Sort(moduleNames)
		return nil, fmt.Errorf("can't find the %q module among the internal modules (available modules: %s)", moduleName, strings.Join(moduleNames, ", "))
	}

	module := factory()
	err := module.Init(config.Module)
	if err != nil {
		return nil, fmt.Errorf("error during module initialization: %w", err)
	}
	return module, nil
}

func createModule(config *Config, moduleName string) modules.Module {
	module, err := newModule(config, moduleName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
	return module
}

func run(cmd *cobra.Command, args []string) {
	config := parseConfigFile(configFilePath)
	module := createModule(config, moduleName)
	logger := newLogger(os.Stderr, "server")
	controller := led.New(module, newLogger(os.Stderr, "led"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runServer(ctx, config, controller, logger); err != nil {
		logger.Error().Err(err).Msg("Server stopped with an error")
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(tuiCmd, toggleCmd, stateCmd)
}

var (
	tuiCmd = &cobra.Command{
		Use:   "tui",
		Short: "Open the LED control window in the terminal",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			config := parseConfigFile(configFilePath)
			module := createModule(config, moduleName)

			logOut, closeLog, err := openDiagnostics(logFilePath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Cannot open log file: %s\n", err)
				os.Exit(1)
			}
			defer closeLog()

			controller := led.New(module, newLogger(logOut, "led"))
			if err = runTUI(controller, newLogger(logOut, "tui")); err != nil {
				fmt.Fprintf(os.Stderr, "Terminal UI error: %s\n", err)
				os.Exit(1)
			}
		},
	}
	toggleCmd = &cobra.Command{
		Use:   "toggle",
		Short: "Toggle the LED once, starting from OFF",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			config := parseConfigFile(configFilePath)
			module := createModule(config, moduleName)
			controller := led.New(module, newLogger(os.Stderr, "led"))

			state, err := controller.Toggle()
			if err != nil {
				fmt.Fprintln(os.Stderr, led.Message(err))
				os.Exit(1)
			}
			fmt.Println(state.Status())
		},
	}
	stateCmd = &cobra.Command{
		Use:   "state",
		Short: "Print the LED state a fresh controller starts with",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			jsonString, err := stateView()
			if err != nil {
				fmt.Fprintln(os.Stderr, "Error during JSON conversion:", err)
				os.Exit(1)
			}
			fmt.Println(string(jsonString))
		},
	}
)

// stateView renders the initial controller state. No module is initialised, so
// the device is left untouched.
func stateView() ([]byte, error) {
	return json.Marshal(led.State{}.View())
}

// openDiagnostics picks where the terminal UI writes its logs so that they do
// not draw over the window.
func openDiagnostics(filePath string) (io.Writer, func(), error) {
	if filePath == "" {
		if !isTerminal(os.Stderr) {
			return os.Stderr, func() {}, nil
		}
		filePath = filepath.Join(os.TempDir(), appName+".log")
	}
	file, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return file, func() { _ = file.Close() }, nil
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
