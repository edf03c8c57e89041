package container

// Options configures the sentinel server. Every field is also settable from
// a SERVICE_ prefixed environment variable.
type Options struct {
	Port        int    `default:"8888"                                                help:"Port to listen on"                                  short:"p"`
	Store       string `default:"memory"                                              help:"Counter store backend: memory, redis or postgres"   short:"s"`
	RedisAddr   string `default:"localhost:6379"                                      help:"Redis server address"                               short:"r"`
	DatabaseURL string `default:"postgres://localhost:5432/sentinel?sslmode=disable" help:"PostgreSQL connection URL"`

	RateLimit  int    `default:"100"    help:"Requests admitted per window by the default policy"`
	RateWindow int    `default:"1"      help:"Length of the default window, in rate units"`
	RateUnit   string `default:"minute" help:"Unit of the default window: second, minute or hour"`
	PolicyFile string `default:""       help:"YAML file declaring named policies"`
	KeyBy      string `default:"client" help:"Request key: client (IP and User-Agent) or route (URL)"`
	FailOpen   bool   `default:"false"  help:"Admit requests when the counter store is unavailable"`

	HeaderLimit      string `default:"X-RateLimit-Limit"     help:"Header carrying the window limit"`
	HeaderRemaining  string `default:"X-RateLimit-Remaining" help:"Header carrying the remaining budget"`
	HeaderReset      string `default:"X-RateLimit-Reset"     help:"Header carrying the window reset"`
	HeaderRetryAfter string `default:"Retry-After"           help:"Header carrying the retry delay on rejection"`
	TimeFormat       string `default:"seconds"               help:"Reset and retry format: seconds or timestamp"`

	SweepSeconds  int    `default:"60"                 help:"Interval between expired counter sweeps"`
	Events        bool   `default:"false"              help:"Publish rejection events to Redis streams"`
	ConsumerGroup string `default:"sentinel-analytics" help:"Redis streams consumer group reading rejection events"`

	LogFormat string `default:"console" help:"Log format: console or json"`
	LogLevel  string `default:"info"    help:"Log level: debug, info, warn or error"`
}
