package cli

import (
	"os"

	"github.com/spf13/cobra"
)

const gatewayURLEnv = "EXAMIFYR_GATEWAY_URL"

var (
	port       string
	configPath string
	gatewayURL string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envPort := os.Getenv("PORT")
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}
	envGateway := os.Getenv(gatewayURLEnv)
	if envGateway == "" {
		envGateway = "http://localhost:8080"
	}

	cmd := &cobra.Command{
		Use:          "examifyr",
		Short:        "Quiz gateway in front of the quiz generation service",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&port, "port", envPort, "port to listen on (overrides server.port)")
	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.PersistentFlags().StringVar(&gatewayURL, "api", envGateway, "gateway base URL used by client commands")
	cmd.AddCommand(NewStartCmd(&configPath, &port))
	cmd.AddCommand(NewGenerateCmd(&gatewayURL))
	cmd.AddCommand(NewGetCmd(&gatewayURL))
	cmd.AddCommand(NewScoreCmd())
	cmd.AddCommand(NewStatusCmd(&configPath))
	return cmd
}
