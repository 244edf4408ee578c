package client

import (
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/intelcomp/taskwatch/pkg/domain"
	"gopkg.in/yaml.v3"
)

var ErrProfileInvalid = errors.New("profile is invalid")

const (
	DefaultTrainingInterval = 10 * time.Second
	DefaultCuratingInterval = 2 * time.Second
	DefaultFetchTimeout     = 30 * time.Second
	DefaultBackoffMax       = 2 * time.Minute
	DefaultBackoffJitter    = 0.2
)

// Config of taskwatch clients.
type Config struct {
	Profile Profile `yaml:"profile"`
	Polling Polling `yaml:"polling"`
}

type Cert struct {
	// base64 encoded CA certificate
	CA string `yaml:"ca,omitempty"`
}

// Profile tells where the task API is.
type Profile struct {
	// endpoint of the task API, like "https://trainer.example.com/api"
	ApiRoot string `yaml:"apiRoot"`

	// bearer token. Empty means anonymous.
	Token string `yaml:"token,omitempty"`

	Cert Cert `yaml:"cert"`
}

// Verify Profile
//
// # Return
//
// nil if it is valid. Otherwise, ErrProfileInvalid error.
func (p *Profile) Verify() error {
	if u, err := url.Parse(p.ApiRoot); err != nil || !u.IsAbs() {
		return fmt.Errorf("%w: apiRoot is not URL: %s", ErrProfileInvalid, p.ApiRoot)
	}
	if p.Cert.CA != "" {
		bin, err := base64.StdEncoding.DecodeString(p.Cert.CA)
		if err != nil {
			return fmt.Errorf("%w: cert.ca is not base64: %w", ErrProfileInvalid, err)
		}
		if blk, _ := pem.Decode(bin); blk == nil {
			return fmt.Errorf("%w: cert.ca is not PEM", ErrProfileInvalid)
		}
	}
	return nil
}

// Polling configures how often running tasks are polled.
type Polling struct {
	Training     time.Duration `yaml:"training"`
	Curating     time.Duration `yaml:"curating"`
	FetchTimeout time.Duration `yaml:"fetchTimeout"`
	Backoff      Backoff       `yaml:"backoff"`
}

type Backoff struct {
	// upper limit of waiting time after successive failures.
	Max time.Duration `yaml:"max"`

	// ratio of randomness added to waiting time, in [0, 1].
	Jitter float64 `yaml:"jitter"`
}

// Interval returns the polling interval for the category.
func (p Polling) Interval(c domain.Category) time.Duration {
	switch c {
	case domain.Training:
		return p.Training
	case domain.Curating:
		return p.Curating
	}
	return 0
}

// Default returns a Config with default polling parameters and no profile.
func Default() *Config {
	return &Config{
		Polling: Polling{
			Training:     DefaultTrainingInterval,
			Curating:     DefaultCuratingInterval,
			FetchTimeout: DefaultFetchTimeout,
			Backoff: Backoff{
				Max:    DefaultBackoffMax,
				Jitter: DefaultBackoffJitter,
			},
		},
	}
}

func Load(filepath string) (*Config, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}
	return Unmarshal(content)
}

// Unmarshal reads yaml. Fields not given get default values.
func Unmarshal(conf []byte) (*Config, error) {
	out := Default()
	if err := yaml.Unmarshal(conf, out); err != nil {
		return nil, err
	}
	if err := out.Polling.verify(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p Polling) verify() error {
	for name, d := range map[string]time.Duration{
		"polling.training":     p.Training,
		"polling.curating":     p.Curating,
		"polling.fetchTimeout": p.FetchTimeout,
		"polling.backoff.max":  p.Backoff.Max,
	} {
		if d <= 0 {
			return fmt.Errorf("%s should be positive: %s", name, d)
		}
	}
	if p.Backoff.Jitter < 0 || 1 < p.Backoff.Jitter {
		return fmt.Errorf("polling.backoff.jitter should be in [0, 1]: %f", p.Backoff.Jitter)
	}
	return nil
}
