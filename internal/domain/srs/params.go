package srs

// Params defines all configurable parameters for the SRS algorithm
type Params struct {
	// Core limits
	MinEaseFactor float64

	// Difficulty ratings accepted by ApplyReview. MaxDifficulty is the neutral
	// rating: it leaves the ease factor unchanged apart from BaseEaseBonus.
	MinDifficulty int
	MaxDifficulty int

	// Ease factor update: ef + (BaseEaseBonus - q*(LinearPenalty + q*QuadraticPenalty))
	// where q = MaxDifficulty - difficulty.
	BaseEaseBonus    float64
	LinearPenalty    float64
	QuadraticPenalty float64

	// Fixed intervals (days) for the first and second consecutive correct review
	FirstInterval  int
	SecondInterval int

	// Interval (days) after an incorrect review
	LapseInterval int

	// Consecutive-correct streaks at which the status advances
	ReviewThreshold  int
	MasteryThreshold int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance
type ParamsConfig struct {
	// Core limits
	MinEaseFactor float64

	// Ease factor update coefficients
	BaseEaseBonus    float64
	LinearPenalty    float64
	QuadraticPenalty float64

	// Intervals
	FirstInterval  int
	SecondInterval int
	LapseInterval  int

	// Status thresholds
	ReviewThreshold  int
	MasteryThreshold int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor: 1.3,

		MinDifficulty: 1,
		MaxDifficulty: 5,

		BaseEaseBonus:    0.1,
		LinearPenalty:    0.08,
		QuadraticPenalty: 0.02,

		FirstInterval:  1,
		SecondInterval: 6,
		LapseInterval:  1,

		ReviewThreshold:  2,
		MasteryThreshold: 5,
	}
}

// NewParams creates a new Params instance with custom configuration.
// Zero values in config keep the defaults.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	// Override core limits if provided
	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}

	// Override ease factor coefficients if provided
	if config.BaseEaseBonus != 0 {
		params.BaseEaseBonus = config.BaseEaseBonus
	}
	if config.LinearPenalty != 0 {
		params.LinearPenalty = config.LinearPenalty
	}
	if config.QuadraticPenalty != 0 {
		params.QuadraticPenalty = config.QuadraticPenalty
	}

	// Override intervals if provided
	if config.FirstInterval > 0 {
		params.FirstInterval = config.FirstInterval
	}
	if config.SecondInterval > 0 {
		params.SecondInterval = config.SecondInterval
	}
	if config.LapseInterval > 0 {
		params.LapseInterval = config.LapseInterval
	}

	// Override status thresholds if provided
	if config.ReviewThreshold > 0 {
		params.ReviewThreshold = config.ReviewThreshold
	}
	if config.MasteryThreshold > 0 {
		params.MasteryThreshold = config.MasteryThreshold
	}

	return params
}
