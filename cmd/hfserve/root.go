package main

import (
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"hfserve/internal/config"
)

// flags collected by the root command.
type rootFlags struct {
	configFile string
	envFile    string
	logLevel   string
	addr       string
}

func newRootCmd(stdout, stderr io.Writer, environ []string) *cobra.Command {
	f := &rootFlags{}
	root := &cobra.Command{
		Use:           "hfserve",
		Short:         "Serve a Hugging Face model over HTTP through vLLM or text-generation-inference",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := f.settings(cmd, environ)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), s, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&f.configFile, "config", "", "Optional YAML/JSON/TOML settings file")
	pf.StringVar(&f.envFile, "env-file", ".env", "Dotenv file; missing is fine unless set explicitly")
	pf.StringVar(&f.logLevel, "log-level", "", "Log level: debug|info|warn|error (overrides LOG_LEVEL)")
	pf.StringVar(&f.addr, "addr", "", "HTTP listen address host:port (overrides HOST and PORT)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Load the engine and serve the HTTP API (default)",
		Args:  cobra.NoArgs,
		RunE:  root.RunE,
	}

	configCmd := &cobra.Command{Use: "config", Short: "Inspect resolved settings"}
	configPrint := &cobra.Command{
		Use:     "print",
		Short:   "Print the resolved settings as YAML",
		Example: "  INFERENCE_BACKEND=transformers hfserve config print",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := f.settings(cmd, environ)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(s)
		},
	}
	configCmd.AddCommand(configPrint)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}

	root.AddCommand(serveCmd, configCmd, versionCmd)
	return root
}

// settings gathers every source and applies flag overrides on top.
func (f *rootFlags) settings(cmd *cobra.Command, environ []string) (config.Settings, error) {
	raw, err := config.Gather(config.Sources{
		ConfigFile:      f.configFile,
		EnvFile:         f.envFile,
		EnvFileRequired: cmd.Flags().Changed("env-file"),
		Environ:         environ,
	})
	if err != nil {
		return config.Settings{}, err
	}
	if f.logLevel != "" {
		raw["LOG_LEVEL"] = f.logLevel
	}
	if f.addr != "" {
		host, port, err := net.SplitHostPort(f.addr)
		if err != nil {
			return config.Settings{}, fmt.Errorf("invalid --addr %q: %w", f.addr, err)
		}
		if strings.TrimSpace(host) != "" {
			raw["HOST"] = host
		}
		raw["PORT"] = port
	}
	return config.Resolve(raw), nil
}
