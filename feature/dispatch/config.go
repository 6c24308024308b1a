package dispatch

// Config holds the downstream queue settings.
type Config struct {
	// Addr is the redis address.
	Addr string `mapstructure:"addr" default:"localhost:6379"`
	// Password authenticates against redis.
	Password string `mapstructure:"password" default:""`
	// DB is the redis database index.
	DB int `mapstructure:"db" default:"0"`
	// Stream receives one entry per work item.
	Stream string `mapstructure:"stream" default:"events_to_process"`
	// MaxLen trims the stream approximately (0 keeps everything).
	MaxLen int64 `mapstructure:"max_len" default:"100000"`
	// BatchSize is the most rows read per dispatch (0 reads all).
	BatchSize int `mapstructure:"batch_size" default:"500"`
}
