package corpusd

type clientConfig struct {
	addrs       []string
	password    string
	maxHits     int
	batchSize   int
	concurrency int
}

// Option configures the Client.
type Option func(*clientConfig)

// WithRedis sets the Redis (or Valkey) addresses to connect to.
func WithRedis(addrs ...string) Option {
	return func(c *clientConfig) { c.addrs = addrs }
}

// WithPassword sets the database password.
func WithPassword(password string) Option {
	return func(c *clientConfig) { c.password = password }
}

// WithMaxHits bounds the backend result page for query-derived sets.
func WithMaxHits(n int) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.maxHits = n
		}
	}
}

// WithBatchSize bounds membership rows per pipelined write.
func WithBatchSize(n int) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithTermTestConcurrency bounds simultaneous backend calls during batch
// term testing.
func WithTermTestConcurrency(n int) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.concurrency = n
		}
	}
}
