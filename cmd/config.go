package cmd

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "revu"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	outputFlagName       = "output"
	serverFlagName       = "server"
	plainFlagName        = "plain"
	noSaveFlagName       = "no-save"
	skipFoldersFlagName  = "skip-folders"
	remoteConfigFlagName = "remote-config"

	serverURLConfigKey     = "server.url"
	serverTimeoutConfigKey = "server.timeout"
	extensionConfigKey     = "scan.extension"
	skipFoldersConfigKey   = "scan.skip_folders"
	remoteConfigConfigKey  = "scan.remote_config"

	defaultServerURL     = "http://localhost:8000"
	defaultServerTimeout = 0 // seconds; 0 runs the request to completion
	defaultExtension     = ".py"
	defaultRemoteConfig  = true
	defaultResultsDir    = ".revu-reports"

	envPrefix = "REVU"

	// legacySkipFoldersEnv is honored for compatibility with the original
	// scan configuration: a comma-separated list that overrides the
	// built-in defaults, typically set through a .env file.
	legacySkipFoldersEnv = "SKIP_FOLDERS"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".revu.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

func init() {
	// .env values become visible to viper.AutomaticEnv below, matching
	// the dotenv behavior of the original scan configuration.
	_ = godotenv.Load()

	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(outputFlagName, defaultResultsDir)
	viper.SetDefault(serverURLConfigKey, defaultServerURL)
	viper.SetDefault(serverTimeoutConfigKey, defaultServerTimeout)
	viper.SetDefault(extensionConfigKey, defaultExtension)
	viper.SetDefault(skipFoldersConfigKey, []string{})
	viper.SetDefault(remoteConfigConfigKey, defaultRemoteConfig)

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}

		return
	}
}

// configuredSkipFolders resolves the local skip-folder seed: the legacy
// SKIP_FOLDERS env var wins, then the config key. An empty seed falls back
// to the built-in default downstream.
func configuredSkipFolders() []string {
	if raw, ok := os.LookupEnv(legacySkipFoldersEnv); ok && strings.TrimSpace(raw) != "" {
		return strings.Split(raw, ",")
	}

	return viper.GetStringSlice(skipFoldersConfigKey)
}

// serverTimeout returns the configured request timeout; zero disables it.
func serverTimeout() time.Duration {
	return time.Duration(viper.GetInt(serverTimeoutConfigKey)) * time.Second
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at Info; if verbose is true it logs at Debug.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
