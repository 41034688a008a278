package cmd

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/readsim/cli/config"
	"github.com/justapithecus/readsim/log"
	"github.com/justapithecus/readsim/policy"
)

// Policy names accepted by --policy.
const (
	policyStrict    = "strict"
	policyBuffered  = "buffered"
	policyStreaming = "streaming"
	policyNoop      = "noop"
)

// policyChoice holds parsed policy configuration.
type policyChoice struct {
	name          string
	bufferPairs   int
	bufferBytes   int64
	flushCount    int
	flushInterval time.Duration
}

func policyFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "policy",
			Usage: "Output policy: strict, buffered or streaming",
			Value: policyStrict,
		},
		&cli.IntFlag{
			Name:  "buffer-pairs",
			Usage: "Max buffered pairs (buffered policy)",
		},
		&cli.Int64Flag{
			Name:  "buffer-bytes",
			Usage: "Max buffer size in bytes (buffered policy)",
		},
		&cli.IntFlag{
			Name:  "flush-count",
			Usage: "Flush after N pairs (streaming policy)",
		},
		&cli.DurationFlag{
			Name:  "flush-interval",
			Usage: "Flush every interval (streaming policy)",
		},
	}
}

func resolvePolicy(c *cli.Context, cfg *config.Config) policyChoice {
	p := configVal(cfg, func(c *config.Config) config.PolicyConfig { return c.Policy })
	return policyChoice{
		name:          resolveString(c, "policy", p.Name),
		bufferPairs:   resolveInt(c, "buffer-pairs", p.BufferPairs),
		bufferBytes:   resolveInt64(c, "buffer-bytes", p.BufferBytes),
		flushCount:    resolveInt(c, "flush-count", p.FlushCount),
		flushInterval: resolveDuration(c, "flush-interval", p.FlushInterval.Duration),
	}
}

// validatePolicyConfig rejects unusable combinations and returns warnings
// for flags the chosen policy ignores.
func validatePolicyConfig(choice policyChoice) (warnings []string, err error) {
	buffered := choice.bufferPairs > 0 || choice.bufferBytes > 0
	streaming := choice.flushCount > 0 || choice.flushInterval > 0

	switch choice.name {
	case policyStrict, policyNoop:
		if buffered || streaming {
			warnings = append(warnings, "buffer/flush flags ignored for "+choice.name+" policy")
		}
		return warnings, nil

	case policyBuffered:
		if !buffered {
			return nil, fmt.Errorf("buffered policy requires buffer limits: --buffer-pairs > 0 or --buffer-bytes > 0")
		}
		if streaming {
			warnings = append(warnings, "--flush-count/--flush-interval ignored for buffered policy")
		}
		return warnings, nil

	case policyStreaming:
		if !streaming {
			return nil, fmt.Errorf("streaming policy requires a flush trigger: --flush-count > 0 or --flush-interval > 0")
		}
		if buffered {
			warnings = append(warnings, "--buffer-pairs/--buffer-bytes ignored for streaming policy")
		}
		return warnings, nil

	default:
		return nil, fmt.Errorf("invalid --policy: %q (must be strict, buffered or streaming)", choice.name)
	}
}

// buildPolicy wraps sink in the chosen policy.
func buildPolicy(choice policyChoice, sink policy.Sink, logger *log.Logger) (policy.Policy, error) {
	switch choice.name {
	case policyStrict:
		return policy.NewStrictPolicy(sink), nil

	case policyBuffered:
		return policy.NewBufferedPolicy(sink, policy.BufferedConfig{
			MaxBufferPairs: choice.bufferPairs,
			MaxBufferBytes: choice.bufferBytes,
			Logger:         logger,
		})

	case policyStreaming:
		return policy.NewStreamingPolicy(sink, policy.StreamingConfig{
			FlushCount:    choice.flushCount,
			FlushInterval: choice.flushInterval,
			Logger:        logger,
		})

	case policyNoop:
		return policy.NewNoopPolicy(), nil

	default:
		return nil, fmt.Errorf("unknown policy: %s", choice.name)
	}
}
