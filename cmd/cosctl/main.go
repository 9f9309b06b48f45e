// cosctl is a command-line client for S3-compatible cloud object storage.
//
// Configuration is taken from flags, COS_* environment variables, or an
// optional config file, in that precedence order.
package main

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/coslib/cos"
)

var rootCmd = &cobra.Command{
	Use:   "cosctl",
	Short: "cosctl - cloud object storage client",
	Long: `cosctl is a command-line client for S3-compatible cloud object storage.
It supports bearer-token and access-key authentication, bucket and object
listing, uploads (including multipart for large files), downloads, and
deletion.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("endpoint", "", "service endpoint host (or COS_ENDPOINT)")
	flags.String("token", "", "bearer token (or COS_TOKEN)")
	flags.String("access-key", "", "access key id (or COS_ACCESS_KEY)")
	flags.String("secret-key", "", "secret access key (or COS_SECRET_KEY)")
	flags.String("region", "", "signing region for access-key auth (or COS_REGION)")
	flags.String("service-instance-id", "", "service instance id for bucket listing")
	flags.Bool("path-style", false, "force path-style URLs")
	flags.Bool("insecure", false, "use plain HTTP (local testing only)")
	flags.Duration("timeout", 5*time.Minute, "per-request timeout")
	flags.BoolP("verbose", "v", false, "enable debug logging")

	viper.SetEnvPrefix("COS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindPFlags(flags)

	rootCmd.AddCommand(lsCmd, getCmd, putCmd, rmCmd, uploadCmd)
}

// newLogger builds the console logger used by all commands.
func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if viper.GetBool("verbose") {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

// newClient builds a COS client from the resolved configuration.
func newClient() (*cos.Client, error) {
	opts := []cos.Option{
		cos.WithEndpoint(viper.GetString("endpoint")),
		cos.WithTimeout(viper.GetDuration("timeout")),
		cos.WithLogger(newLogger()),
	}

	if token := viper.GetString("token"); token != "" {
		opts = append(opts, cos.WithTokenProvider(cos.StaticTokenProvider(token)))
	} else if id := viper.GetString("access-key"); id != "" {
		opts = append(opts, cos.WithCredentials(cos.StaticCredentials{
			AccessKeyID:     id,
			SecretAccessKey: viper.GetString("secret-key"),
		}))
	}

	if region := viper.GetString("region"); region != "" {
		opts = append(opts, cos.WithRegion(region))
	}
	if id := viper.GetString("service-instance-id"); id != "" {
		opts = append(opts, cos.WithServiceInstanceID(id))
	}
	if viper.GetBool("path-style") {
		opts = append(opts, cos.WithForcePathStyle(true))
	}
	if viper.GetBool("insecure") {
		opts = append(opts, cos.WithDisableSSL(true))
	}

	return cos.New(opts...)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
