package offload

import "treeval/config"

// FromConfig translates the offload section of the configuration into
// serializer and session options.
func FromConfig(cfg config.Offload) ([]Option, []SessionOption) {
	options := []Option{WithWeightScale(cfg.WeightScale)}
	if cfg.ConfigOnce {
		options = append(options, WithConfigOnce())
	}
	return options, []SessionOption{WithPollInterval(cfg.PollInterval)}
}
