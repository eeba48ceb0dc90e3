package loader

import "go.uber.org/zap"

const (
	// DefaultBatchSize is the number of records per transaction.
	DefaultBatchSize = 1000
	// DefaultLanguage selects labels, descriptions and multilingual text.
	DefaultLanguage = "en"

	progressEvery = 1000
)

// Options configures a load.
type Options struct {
	BatchSize int
	Language  string
	// SubEntities stores lexeme forms and senses as records of their own.
	SubEntities bool
	// Progress is called periodically and once at the end of the stream.
	Progress func(Stats)
	Logger   *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.Language == "" {
		o.Language = DefaultLanguage
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}
