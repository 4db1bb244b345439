package cmd

import (
	"fmt"
	u "net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/maktabdl/maktabdl/internal/auth"
	"github.com/maktabdl/maktabdl/internal/output"
	"github.com/maktabdl/maktabdl/internal/utils"
	"github.com/spf13/cobra"
)

var (
	timeout       time.Duration
	kaTimeout     time.Duration
	userAgent     string
	proxyURL      string
	proxyUsername string
	proxyPassword string
	headers       []string
	workers       int
	sampleLimit   int64
	debug         bool
	baseURL       string
	userEmail     string
	userPassword  string
	forceLogin    bool
	sessionFile   string

	globalHTTPConfig utils.HTTPClientConfig
)

var MaktabdlVersion = "dev"

var rootCmd = &cobra.Command{
	Use:     "maktabdl",
	Short:   "Maktabdl downloads course lectures from Maktabkhooneh",
	Version: MaktabdlVersion,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		utils.InitLogger(debug)
		if userAgent == "randomize" {
			userAgent = utils.GetRandomUserAgent()
		}
		// Check if proxy URL contains auth
		parsedProxy, err := u.Parse(proxyURL)
		if err == nil && parsedProxy.User != nil && proxyUsername == "" {
			proxyUsername = parsedProxy.User.Username()
			if password, set := parsedProxy.User.Password(); set {
				proxyPassword = password
			}
			parsedProxy.User = nil
			proxyURL = parsedProxy.String()
		}
		globalHTTPConfig = utils.HTTPClientConfig{
			Timeout:       timeout,
			KATimeout:     kaTimeout,
			ProxyURL:      proxyURL,
			ProxyUsername: proxyUsername,
			ProxyPassword: proxyPassword,
			UserAgent:     userAgent,
			Headers:       utils.ParseHeaderArgs(headers),
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(utils.ExitFailure)
	}
}

func init() {
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 3*time.Minute, "Connection timeout (eg. 5s, 10m)")
	rootCmd.PersistentFlags().DurationVarP(&kaTimeout, "keep-alive-timeout", "k", 90*time.Second, "Keep-alive timeout for client (eg. 10s, 1m, 80s)")
	rootCmd.PersistentFlags().StringVarP(&userAgent, "user-agent", "a", "", "User agent ('randomize' picks one)")
	rootCmd.PersistentFlags().StringVarP(&proxyURL, "proxy", "p", "", "HTTP/HTTPS proxy URL (e.g., proxy.example.com:8080)")
	rootCmd.PersistentFlags().StringVar(&proxyUsername, "proxy-username", "", "Proxy username (if not provided in proxy URL)")
	rootCmd.PersistentFlags().StringVar(&proxyPassword, "proxy-password", "", "Proxy password (if not provided in proxy URL)")
	rootCmd.PersistentFlags().StringArrayVarP(&headers, "header", "H", []string{}, "Custom headers (like 'Accept-Language: fa'); can be specified multiple times")
	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "w", 1, "Number of files to download in parallel")
	rootCmd.PersistentFlags().Int64Var(&sampleLimit, "sample", 0, "Download only the first N bytes of each file (0 = full files)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", auth.DefaultBaseURL, "Platform base URL")
	rootCmd.PersistentFlags().StringVarP(&userEmail, "user", "u", "", "Account email for login")
	rootCmd.PersistentFlags().StringVar(&userPassword, "password", "", "Account password for login")
	rootCmd.PersistentFlags().BoolVar(&forceLogin, "force-login", false, "Ignore stored sessions and log in again")
	rootCmd.PersistentFlags().StringVar(&sessionFile, "session-file", defaultSessionPath(), "Path of the persisted session record")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newCourseCmd())
	rootCmd.AddCommand(newFetchCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newBatchCmd())
	rootCmd.AddCommand(newCleanCmd())
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".maktabdl-session.json"
	}
	return filepath.Join(home, ".maktabdl-session.json")
}

// acquireSession builds the shared HTTP client and resolves a verified
// session onto it, exiting with the session-specific code when none of the
// sources produce one.
func acquireSession() (*utils.MaktabHTTPClient, *auth.Session) {
	client := utils.NewMaktabHTTPClient(globalHTTPConfig)
	session, err := auth.Acquire(client, auth.Options{
		BaseURL:    baseURL,
		Email:      userEmail,
		Password:   userPassword,
		ForceLogin: forceLogin,
		RecordPath: sessionFile,
		Override:   os.Getenv(auth.OverrideEnv),
	})
	if err != nil {
		output.PrintError(err.Error())
		output.PrintDetail("Provide --user and --password (or set " + auth.OverrideEnv + ") and try again")
		os.Exit(utils.ExitNoSession)
	}
	return client, session
}
