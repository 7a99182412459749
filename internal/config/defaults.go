package config

const (
	defaultService        = "chronicle"
	defaultLogDir         = "~/.local/share/chronicle/logs"
	defaultErrorFile      = "error.log"
	defaultLogLevel       = "debug"
	defaultStorePath      = ""
	defaultConnectTimeout = 10
	defaultAPIBind        = "127.0.0.1:7391"
)

// Default returns a Config populated with repository defaults. The store
// path defaults to empty, which runs the logger in console/file-only mode.
func Default() Config {
	return Config{
		Service: defaultService,
		Logging: Logging{
			LogDir:    defaultLogDir,
			ErrorFile: defaultErrorFile,
			Level:     defaultLogLevel,
		},
		Store: Store{
			Path:           defaultStorePath,
			ConnectTimeout: defaultConnectTimeout,
		},
		API: API{
			Bind: defaultAPIBind,
		},
	}
}
