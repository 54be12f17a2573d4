package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/optimode/mailprobe"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "mailprobe",
	Short: "mailprobe checks whether email addresses are deliverable",
	Long: `mailprobe resolves each address's mail hosts and walks an SMTP
conversation up to RCPT TO, without sending a message, to classify the address.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	f := rootCmd.PersistentFlags()
	f.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.mailprobe.yaml)")
	f.String("log-level", "info", "log level (debug, info, warn, error)")
	f.String("log-format", "console", "log format (console, json)")

	f.String("mail-from", mailprobe.DefaultMailFrom, "envelope sender for MAIL FROM")
	f.String("helo", "", "EHLO domain (default is the mail-from domain)")
	f.String("port", "25", "SMTP port")
	f.Duration("timeout", 8*time.Second, "probe session timeout")
	f.Duration("command-timeout", 0, "per-command reply timeout (default is --timeout)")
	f.String("ehlo-policy", string(mailprobe.PolicyIgnore), "what a failed EHLO does (ignore, abort)")
	f.String("mail-from-policy", string(mailprobe.PolicyAbort), "what a failed MAIL FROM does (ignore, abort)")
	f.Int("max-hosts", 0, "maximum number of mail hosts tried per address (0 = all)")
	f.Bool("continue-on-temp-failure", false, "try the next host after a 4xx RCPT reply")
	f.String("proxy", "", "SOCKS5 proxy url for outbound probes, e.g. socks5://127.0.0.1:1080")

	f.Duration("lookup-timeout", 5*time.Second, "per DNS query timeout")
	f.Duration("cache-ttl", 5*time.Minute, "how long resolved mail hosts are reused")
	f.Bool("strict", false, "apply RFC 5321 syntax rules")
	f.Bool("typos", true, "suggest corrections for misspelled provider domains")
	f.String("roles-file", "", "file of role-account local parts replacing the built-in table")
	f.String("disposable-file", "", "file of disposable domains replacing the built-in table")

	f.Int("workers", 5, "addresses verified at once")
	f.Int("per-domain", 1, "addresses of one domain verified at once")

	_ = viper.BindPFlags(f)
}

func initConfig() {
	// a missing .env is fine
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, _ := os.UserHomeDir()
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".mailprobe")
	}

	viper.SetEnvPrefix("MAILPROBE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the process logger from --log-level and --log-format.
func newLogger(w io.Writer) (zerolog.Logger, error) {
	return buildLogger(w, viper.GetString("log-level"), viper.GetString("log-format"))
}

func buildLogger(w io.Writer, levelName, format string) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(levelName)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level: %w", err)
	}
	switch format {
	case "json":
	case "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format %q", format)
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

// newVerifier configures a Verifier from flags, environment and config file.
func newVerifier(logger zerolog.Logger) *mailprobe.Verifier {
	v := mailprobe.New().
		WithProbe(mailprobe.ProbeOptions{
			MailFrom:              viper.GetString("mail-from"),
			HeloDomain:            viper.GetString("helo"),
			Port:                  viper.GetString("port"),
			Timeout:               viper.GetDuration("timeout"),
			CommandTimeout:        viper.GetDuration("command-timeout"),
			EHLOPolicy:            mailprobe.FailurePolicy(viper.GetString("ehlo-policy")),
			MailFromPolicy:        mailprobe.FailurePolicy(viper.GetString("mail-from-policy")),
			MaxHosts:              viper.GetInt("max-hosts"),
			ContinueOnTempFailure: viper.GetBool("continue-on-temp-failure"),
			ProxyURL:              viper.GetString("proxy"),
		}).
		WithResolver(mailprobe.ResolverOptions{
			LookupTimeout: viper.GetDuration("lookup-timeout"),
			CacheTTL:      viper.GetDuration("cache-ttl"),
		}).
		WithDomain(mailprobe.DomainOptions{
			CheckTypos:    viper.GetBool("typos"),
			TypoThreshold: 2,
		}).
		WithLogger(logger)

	if viper.GetBool("strict") {
		v = v.WithStrictSyntax()
	}
	if path := viper.GetString("roles-file"); path != "" {
		v = v.WithRoleAccountsFile(path)
	}
	if path := viper.GetString("disposable-file"); path != "" {
		v = v.WithDisposableDomainsFile(path)
	}
	return v
}

func concurrency() mailprobe.ConcurrencyOptions {
	return mailprobe.ConcurrencyOptions{
		Workers:   viper.GetInt("workers"),
		PerDomain: viper.GetInt("per-domain"),
	}
}
