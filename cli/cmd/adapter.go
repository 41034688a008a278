package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/readsim/adapter"
	"github.com/justapithecus/readsim/adapter/redis"
	"github.com/justapithecus/readsim/adapter/webhook"
	"github.com/justapithecus/readsim/cli/config"
)

// adapterChoice holds parsed completion adapter configuration.
type adapterChoice struct {
	typ     string // "", "webhook" or "redis"
	url     string
	channel string
	headers map[string]string
	timeout time.Duration
	retries *int
	backoff time.Duration
}

func adapterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "adapter",
			Usage: "Completion adapter: webhook or redis",
		},
		&cli.StringFlag{
			Name:  "adapter-url",
			Usage: "Webhook endpoint or Redis URL",
		},
		&cli.StringFlag{
			Name:  "adapter-channel",
			Usage: "Redis pub/sub channel",
		},
		&cli.StringSliceFlag{
			Name:  "adapter-header",
			Usage: "Webhook header as Key=Value (repeatable)",
		},
		&cli.DurationFlag{
			Name:  "adapter-timeout",
			Usage: "Per-attempt publish timeout",
		},
		&cli.IntFlag{
			Name:  "adapter-retries",
			Usage: "Publish retries after the first attempt",
		},
		&cli.DurationFlag{
			Name:  "adapter-backoff",
			Usage: "Delay before the first retry, doubled per retry",
		},
	}
}

func resolveAdapter(c *cli.Context, cfg *config.Config) (adapterChoice, error) {
	a := configVal(cfg, func(c *config.Config) config.AdapterConfig { return c.Adapter })
	choice := adapterChoice{
		typ:     resolveString(c, "adapter", a.Type),
		url:     resolveString(c, "adapter-url", a.URL),
		channel: resolveString(c, "adapter-channel", a.Channel),
		headers: a.Headers,
		timeout: resolveDuration(c, "adapter-timeout", a.Timeout.Duration),
		retries: a.Retries,
		backoff: resolveDuration(c, "adapter-backoff", a.Backoff.Duration),
	}
	if c.IsSet("adapter-retries") {
		n := c.Int("adapter-retries")
		choice.retries = &n
	}
	if c.IsSet("adapter-header") {
		headers, err := parseHeaders(c.StringSlice("adapter-header"))
		if err != nil {
			return adapterChoice{}, err
		}
		choice.headers = headers
	}
	return choice, nil
}

func parseHeaders(pairs []string) (map[string]string, error) {
	headers := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		k, v, ok := strings.Cut(kv, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --adapter-header %q (want Key=Value)", kv)
		}
		headers[k] = v
	}
	return headers, nil
}

// buildAdapter returns nil when no adapter is configured.
func buildAdapter(choice adapterChoice) (adapter.Adapter, error) {
	switch choice.typ {
	case "":
		if choice.url != "" {
			return nil, fmt.Errorf("--adapter-url set without --adapter (webhook or redis)")
		}
		return nil, nil

	case "webhook":
		retries := webhook.DefaultRetries
		if choice.retries != nil {
			retries = *choice.retries
		}
		a, err := webhook.New(webhook.Config{
			URL:     choice.url,
			Headers: choice.headers,
			Timeout: choice.timeout,
			Retries: retries,
			Backoff: choice.backoff,
		})
		if err != nil {
			return nil, err
		}
		return a, nil

	case "redis":
		retries := redis.DefaultRetries
		if choice.retries != nil {
			retries = *choice.retries
		}
		a, err := redis.New(redis.Config{
			URL:     choice.url,
			Channel: choice.channel,
			Timeout: choice.timeout,
			Retries: retries,
			Backoff: choice.backoff,
		})
		if err != nil {
			return nil, err
		}
		return a, nil

	default:
		return nil, fmt.Errorf("invalid --adapter: %q (must be webhook or redis)", choice.typ)
	}
}
