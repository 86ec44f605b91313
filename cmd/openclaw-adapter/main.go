package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/yourusername/openclaw-adapter/internal/adapter"
	"github.com/yourusername/openclaw-adapter/internal/capability"
	"github.com/yourusername/openclaw-adapter/internal/client"
	"github.com/yourusername/openclaw-adapter/internal/config"
	"github.com/yourusername/openclaw-adapter/internal/dispatch"
	"github.com/yourusername/openclaw-adapter/internal/gateway"
	"github.com/yourusername/openclaw-adapter/internal/logging"
	"github.com/yourusername/openclaw-adapter/internal/models"
	"github.com/yourusername/openclaw-adapter/internal/output"
	"github.com/yourusername/openclaw-adapter/internal/tracing"
)

var (
	configPath string
	gatewayURL string
	timeout    time.Duration
	noColor    bool
	debugMode  bool

	callParams string
	callID     string
	callPretty bool
	jsonOutput bool

	// exitCode is set by commands that emit an envelope
	exitCode int

	// Color functions
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	keyColor     = color.New(color.FgYellow)
)

// rootCmd runs the adapter in single-shot mode when invoked without a subcommand
var rootCmd = &cobra.Command{
	Use:   "openclaw-adapter",
	Short: "OpenClaw gateway adapter",
	Long: `openclaw-adapter reads one JSON request from MIYA_ADAPTER_RPC_REQ, forwards it to
the OpenClaw gateway and writes exactly one JSON envelope to stdout.

The exit code is 0 when the envelope reports ok and 1 otherwise.`,
	Version:       "0.1.0",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(cmd.Context())
		defer a.Close()

		r := &adapter.Runner{Lookup: os.LookupEnv, Out: os.Stdout, Dispatcher: a.dispatcher()}
		exitCode = r.Run(cmd.Context())
		return nil
	},
}

// callCmd builds a request from arguments instead of the environment
var callCmd = &cobra.Command{
	Use:   "call <method>",
	Short: "Send one request to the gateway",
	Long: `Builds a request from the method argument and --params, runs it through the same
dispatcher as single-shot mode and prints the envelope.`,
	Example: `  openclaw-adapter call gateway.status
  openclaw-adapter call sessions.send --params '{"sessionID":"main","text":"hi"}'
  openclaw-adapter call audit.replay --params '{"limit":10}' --pretty`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := parseParams(callParams)
		if err != nil {
			return err
		}
		id := callID
		if id == "" {
			id = uuid.NewString()
		}
		req := models.NewRequest(id, args[0], params)

		a := newApp(cmd.Context())
		defer a.Close()

		r := &adapter.Runner{Out: os.Stdout, Dispatcher: a.dispatcher()}
		if !callPretty {
			exitCode = r.RunRequest(cmd.Context(), req)
			return nil
		}

		resp := r.Handle(cmd.Context(), req)
		if err := output.PrintResponse(os.Stdout, resp); err != nil {
			return err
		}
		if !resp.OK {
			exitCode = 1
		}
		return nil
	},
}

// methodsCmd lists accepted method names
var methodsCmd = &cobra.Command{
	Use:   "methods",
	Short: "List accepted methods",
	Long:  `Prints every accepted method name, including synonyms, with the operation it maps to.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		methods := dispatch.New(nil, nil).Methods()
		if jsonOutput {
			return output.PrintJSON(os.Stdout, methods)
		}
		output.PrintMethodsTable(os.Stdout, methods)
		return nil
	},
}

// schemaCmd prints JSON Schemas of the envelopes
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print JSON Schema for request and response envelopes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return output.PrintJSON(os.Stdout, models.Schemas())
	},
}

// pingCmd checks the adapter and the gateway
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Test the adapter and gateway connectivity",
	Long:  `Runs health.ping locally, then gateway.status against the configured gateway, and reports the response time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(cmd.Context())
		defer a.Close()
		if a.err != nil {
			printError(fmt.Sprintf("Invalid configuration: %v", a.err))
			exitCode = 1
			return nil
		}

		r := &adapter.Runner{Dispatcher: a.dispatcher()}
		health := r.Handle(cmd.Context(), models.NewRequest(uuid.NewString(), "health.ping", nil))

		start := time.Now()
		status := r.Handle(cmd.Context(), models.NewRequest(uuid.NewString(), "gateway.status", nil))
		elapsed := time.Since(start)

		if jsonOutput {
			if !status.OK {
				exitCode = 1
			}
			return output.PrintJSON(os.Stdout, map[string]any{
				"adapter":   health,
				"gateway":   status,
				"elapsedMs": elapsed.Milliseconds(),
			})
		}

		successColor.Println("✓ Adapter ok")
		keyColor.Print("Gateway: ")
		fmt.Println(a.cfg.BaseURL())
		if !status.OK {
			printError(fmt.Sprintf("Gateway unreachable: %s", status.GetError()))
			exitCode = 1
			return nil
		}
		successColor.Println("✓ Gateway responded")
		infoColor.Printf("Response time: %v\n", elapsed.Round(time.Millisecond))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/miya/openclaw-adapter.yaml)")
	rootCmd.PersistentFlags().StringVar(&gatewayURL, "gateway", "", "Gateway base URL (overrides "+config.EnvGatewayURL+")")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Per-candidate request timeout (overrides "+config.EnvTimeout+")")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Write debug logs to stderr")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	callCmd.Flags().StringVarP(&callParams, "params", "p", "", "Request params as a JSON object")
	callCmd.Flags().StringVar(&callID, "id", "", "Request id (default: random UUID)")
	callCmd.Flags().BoolVar(&callPretty, "pretty", false, "Human readable output")

	methodsCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	pingCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(methodsCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(pingCmd)

	cobra.OnInitialize(func() {
		if noColor || !output.IsTerminal(os.Stdout) {
			color.NoColor = true
		}
	})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cmd, err := rootCmd.ExecuteContextC(ctx)
	if err != nil {
		if cmd == rootCmd {
			// single-shot callers read stdout, so a bad invocation still gets an envelope
			if werr := writeInvocationError(os.Stdout, err); werr != nil {
				printError(err.Error())
			}
		} else {
			printError(err.Error())
		}
		if exitCode == 0 {
			exitCode = 1
		}
	}
	stop()
	os.Exit(exitCode)
}

// app holds the wiring shared by the commands
type app struct {
	cfg      *config.Config
	err      error
	proxy    *gateway.Proxy
	caps     capability.Provider
	shutdown func(context.Context) error
}

// newApp loads configuration (file < env < flags) and wires logging, tracing
// and the gateway proxy. A configuration error is kept in app.err so single-shot
// mode can still answer with an envelope.
func newApp(ctx context.Context) *app {
	a := &app{shutdown: func(context.Context) error { return nil }}

	cfg, err := loadConfig(configPath, os.LookupEnv)
	a.cfg = cfg
	a.err = err
	a.caps = capability.New(cfg.Capability.ManifestPath)

	if debugMode {
		logging.InitWriter(os.Stderr, zerolog.DebugLevel)
	} else if err := logging.Init(logging.Options{Level: cfg.Logging.Level, Path: cfg.Logging.Path}); err != nil {
		// no log file; keep running with logging disabled
		logging.Close()
	}
	if a.err != nil {
		logging.Error().Err(a.err).Msg("invalid configuration")
		return a
	}

	shutdown, err := tracing.Setup(ctx, cfg.Tracing, logging.Writer())
	if err != nil {
		logging.Warn().Err(err).Msg("tracing disabled")
	} else {
		a.shutdown = shutdown
	}

	transport := client.NewHTTPClient(cfg.Timeout(), nil)
	a.proxy = gateway.NewProxy(transport, gateway.NewResolver(cfg.BaseURL()), cfg.Gateway.Token, cfg.Timeout())

	logging.Debug().
		Str("gateway", cfg.BaseURL()).
		Dur("timeout", cfg.Timeout()).
		Bool("token", cfg.Gateway.Token != "").
		Msg("adapter configured")
	return a
}

// dispatcher serves local methods even when the gateway could not be configured.
func (a *app) dispatcher() adapter.Dispatcher {
	if a.err != nil {
		return dispatch.New(dispatch.Unavailable{Err: a.err}, a.caps)
	}
	return dispatch.New(a.proxy, a.caps)
}

func (a *app) Close() {
	if err := a.shutdown(context.Background()); err != nil {
		logging.Warn().Err(err).Msg("tracing shutdown failed")
	}
	logging.Close()
}

// loadConfig applies the file, then the environment, then command line flags.
// On error it still returns a usable config so logging can be set up.
func loadConfig(path string, lookup func(string) (string, bool)) (*config.Config, error) {
	if path == "" {
		if v, ok := lookup(config.EnvConfigPath); ok {
			path = v
		}
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return config.DefaultConfig(), err
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return cfg, err
	}
	if gatewayURL != "" {
		cfg.Gateway.URL = gatewayURL
	}
	if timeout > 0 {
		cfg.Gateway.TimeoutSeconds = timeout.Seconds()
	}
	if debugMode {
		cfg.Logging.Level = "debug"
	}
	return cfg, cfg.Validate()
}

// writeInvocationError reports a command line parse failure as a bad_request_json envelope.
func writeInvocationError(w io.Writer, err error) error {
	line, encErr := models.NewError(models.UnknownID, models.CodeBadRequestJSON, "invalid_invocation:"+err.Error(), nil).Encode()
	if encErr != nil {
		return encErr
	}
	_, werr := w.Write(line)
	return werr
}

// parseParams decodes the --params flag. Empty input means no params.
func parseParams(raw string) (map[string]any, error) {
	if raw == "" {
		return map[string]any{}, nil
	}
	var params map[string]any
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return nil, fmt.Errorf("--params must be a JSON object: %w", err)
	}
	if params == nil {
		params = map[string]any{}
	}
	return params, nil
}

func printError(msg string) {
	if noColor {
		fmt.Fprintln(os.Stderr, "Error:", msg)
	} else {
		errorColor.Fprint(os.Stderr, "✗ Error: ")
		fmt.Fprintln(os.Stderr, msg)
	}
}
