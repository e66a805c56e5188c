package ep

import (
	"runtime"

	"github.com/pkg/errors"

	"github.com/parallelbench/ep/pkg/lcg"
	"github.com/parallelbench/ep/pkg/log"
)

// Default generator constants.
const (
	DefaultMultiplier    = 1220703125.0
	DefaultSeed          = 271828183.0
	DefaultBatchExponent = 16
	DefaultClass         = "S"

	// NQ is the number of histogram bins.
	NQ = 10

	// maxExponent keeps 2^(M+1) within the generator period of 2^44.
	maxExponent = 43

	// MaxTotalBatches bounds the number of batches in a run. The reducer
	// keeps one Sum per batch, so this caps its memory at 256 MiB, which is
	// what class E needs with the default batch exponent.
	MaxTotalBatches = 1 << 24
)

var classExponents = map[string]int{
	"S": 24,
	"W": 25,
	"A": 28,
	"B": 30,
	"C": 32,
	"D": 36,
	"E": 40,
}

// Classes returns the known problem classes in increasing size order.
func Classes() []string {
	return []string{"S", "W", "A", "B", "C", "D", "E"}
}

// ClassExponent returns the generator exponent M for a problem class.
func ClassExponent(class string) (int, bool) {
	m, ok := classExponents[class]
	return m, ok
}

func classForExponent(m int) string {
	for class, cm := range classExponents {
		if cm == m {
			return class
		}
	}
	return "U"
}

var (
	// ErrUnknownClass is returned for a class letter with no exponent.
	ErrUnknownClass = errors.New("unknown problem class")

	// ErrInvalidExponent is returned when the exponent is out of range or
	// smaller than the batch exponent.
	ErrInvalidExponent = errors.New("invalid problem exponent")

	// ErrInvalidBatchExponent is returned for a batch exponent outside
	// [1, 30].
	ErrInvalidBatchExponent = errors.New("invalid batch exponent")

	// ErrTooManyBatches is returned when M minus the batch exponent yields
	// more than MaxTotalBatches batches.
	ErrTooManyBatches = errors.New("too many batches")

	// ErrInvalidWorkers is returned for a negative worker count.
	ErrInvalidWorkers = errors.New("invalid worker count")
)

// Config represents the configuration of a benchmark run.
type Config struct {
	// Class selects the problem size. It is ignored when Exponent is set.
	Class string `yaml:"class"`

	// Exponent overrides the class and sets M directly: the run generates
	// 2^M Gaussian candidate pairs.
	Exponent int `yaml:"exponent"`

	// BatchExponent is log2 of the number of pairs per batch.
	BatchExponent int `yaml:"batch_exponent"`

	// Workers is the number of parallel workers. Zero uses GOMAXPROCS.
	Workers int `yaml:"workers"`

	// Timers enables collection of per-phase timings.
	Timers bool `yaml:"timers"`

	Seed       float64 `yaml:"seed"`
	Multiplier float64 `yaml:"multiplier"`
}

// LogFields renders the current config as a set of Logrus fields.
func (cfg Config) LogFields() log.Fields {
	return log.Fields{
		"class":         cfg.Class,
		"exponent":      cfg.Exponent,
		"batchExponent": cfg.BatchExponent,
		"workers":       cfg.Workers,
		"timers":        cfg.Timers,
		"seed":          cfg.Seed,
		"multiplier":    cfg.Multiplier,
	}
}

// Validate sanity checks values set in a config and returns a new config
// with default values replacing anything that is unset.
func (cfg Config) Validate() (Config, error) {
	validcfg := cfg

	if cfg.Exponent == 0 {
		if cfg.Class == "" {
			validcfg.Class = DefaultClass
			log.Debug("falling back to default configuration", log.Fields{
				"name":     "Class",
				"provided": cfg.Class,
				"default":  validcfg.Class,
			})
		}
		m, ok := ClassExponent(validcfg.Class)
		if !ok {
			return cfg, errors.Wrapf(ErrUnknownClass, "class %q", validcfg.Class)
		}
		validcfg.Exponent = m
	} else {
		validcfg.Class = classForExponent(cfg.Exponent)
	}

	if cfg.BatchExponent == 0 {
		validcfg.BatchExponent = DefaultBatchExponent
	}
	if validcfg.BatchExponent < 1 || validcfg.BatchExponent > 30 {
		return cfg, ErrInvalidBatchExponent
	}

	if validcfg.Exponent < validcfg.BatchExponent || validcfg.Exponent > maxExponent {
		return cfg, errors.Wrapf(ErrInvalidExponent, "M = %d with batch exponent %d", validcfg.Exponent, validcfg.BatchExponent)
	}
	if batches := int64(1) << uint(validcfg.Exponent-validcfg.BatchExponent); batches > MaxTotalBatches {
		return cfg, errors.Wrapf(ErrTooManyBatches, "M = %d with batch exponent %d gives %d batches, at most %d allowed",
			validcfg.Exponent, validcfg.BatchExponent, batches, MaxTotalBatches)
	}

	if cfg.Workers < 0 {
		return cfg, ErrInvalidWorkers
	}
	if cfg.Workers == 0 {
		validcfg.Workers = runtime.GOMAXPROCS(0)
		log.Debug("falling back to default configuration", log.Fields{
			"name":     "Workers",
			"provided": cfg.Workers,
			"default":  validcfg.Workers,
		})
	}

	if cfg.Seed == 0 {
		validcfg.Seed = DefaultSeed
	}
	if err := lcg.Validate(validcfg.Seed); err != nil {
		return cfg, errors.Wrap(err, "seed")
	}

	if cfg.Multiplier == 0 {
		validcfg.Multiplier = DefaultMultiplier
	}
	if err := lcg.Validate(validcfg.Multiplier); err != nil {
		return cfg, errors.Wrap(err, "multiplier")
	}

	return validcfg, nil
}

// Params are the sizes derived from a validated Config.
type Params struct {
	Class         string
	Exponent      int
	BatchExponent int
	BatchSize     int
	TotalBatches  int
	Seed          float64
	Multiplier    float64
}

func paramsFor(cfg Config) Params {
	return Params{
		Class:         cfg.Class,
		Exponent:      cfg.Exponent,
		BatchExponent: cfg.BatchExponent,
		BatchSize:     1 << uint(cfg.BatchExponent),
		TotalBatches:  1 << uint(cfg.Exponent-cfg.BatchExponent),
		Seed:          cfg.Seed,
		Multiplier:    cfg.Multiplier,
	}
}

// Size is the number of uniforms the run generates, 2^(M+1).
func (p Params) Size() int64 {
	return 1 << uint(p.Exponent+1)
}
