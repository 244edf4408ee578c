package server

import (
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/intelcomp/taskwatch/pkg/loop/recurring"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPort      = 8080
	DefaultIssuer    = "taskwatch"
	DefaultTokenTTL  = 24 * time.Hour
	DefaultJobPrefix = "task-"
	DefaultPolicy    = "forever:10s"
)

// ServerConfigMarshall is the yaml shape of ServerConfig.
type ServerConfigMarshall struct {
	Port     int32                  `yaml:"port,omitempty"`
	Database string                 `yaml:"database"`
	Auth     *AuthConfigMarshall    `yaml:"auth"`
	Cluster  *ClusterConfigMarshall `yaml:"cluster,omitempty"`
	Loops    *LoopsConfigMarshall   `yaml:"loops,omitempty"`
}

type AuthConfigMarshall struct {
	// base64 encoded HMAC key
	Secret string `yaml:"secret"`

	Issuer string        `yaml:"issuer,omitempty"`
	TTL    time.Duration `yaml:"ttl,omitempty"`
}

type ClusterConfigMarshall struct {
	Namespace  string `yaml:"namespace"`
	Kubeconfig string `yaml:"kubeconfig,omitempty"`
	JobPrefix  string `yaml:"jobPrefix,omitempty"`
}

type LoopsConfigMarshall struct {
	CheckTasks *LoopConfigMarshall `yaml:"checkTasks,omitempty"`
}

type LoopConfigMarshall struct {
	Policy  string        `yaml:"policy,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

func (s *ServerConfigMarshall) seal(path string) (*ServerConfig, error) {
	port := s.Port
	if port == 0 {
		port = DefaultPort
	}
	if port < 0 || 65535 < port {
		return nil, fmt.Errorf("%s.port is out of range: %d", path, port)
	}
	if s.Database == "" {
		return nil, fmt.Errorf("%s.database is required", path)
	}
	if s.Auth == nil {
		return nil, fmt.Errorf("%s.auth is required", path)
	}
	auth, err := s.Auth.seal(path + ".auth")
	if err != nil {
		return nil, err
	}

	var cluster *ClusterConfig
	if s.Cluster != nil {
		if cluster, err = s.Cluster.seal(path + ".cluster"); err != nil {
			return nil, err
		}
	}

	lm := s.Loops
	if lm == nil {
		lm = &LoopsConfigMarshall{}
	}
	loops, err := lm.seal(path + ".loops")
	if err != nil {
		return nil, err
	}

	return &ServerConfig{
		port:     port,
		database: s.Database,
		auth:     auth,
		cluster:  cluster,
		loops:    loops,
	}, nil
}

func (a *AuthConfigMarshall) seal(path string) (*AuthConfig, error) {
	if a.Secret == "" {
		return nil, fmt.Errorf("%s.secret is required", path)
	}
	secret, err := base64.StdEncoding.DecodeString(a.Secret)
	if err != nil {
		return nil, fmt.Errorf("%s.secret is not base64: %w", path, err)
	}
	if len(secret) < 32 {
		return nil, fmt.Errorf("%s.secret is too short: it should be 32 bytes or more", path)
	}
	issuer := a.Issuer
	if issuer == "" {
		issuer = DefaultIssuer
	}
	ttl := a.TTL
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}
	if ttl < 0 {
		return nil, fmt.Errorf("%s.ttl should be positive: %s", path, ttl)
	}
	return &AuthConfig{secret: secret, issuer: issuer, ttl: ttl}, nil
}

func (c *ClusterConfigMarshall) seal(path string) (*ClusterConfig, error) {
	if c.Namespace == "" {
		return nil, fmt.Errorf("%s.namespace is required", path)
	}
	prefix := c.JobPrefix
	if prefix == "" {
		prefix = DefaultJobPrefix
	}
	return &ClusterConfig{
		namespace:  c.Namespace,
		kubeconfig: c.Kubeconfig,
		jobPrefix:  prefix,
	}, nil
}

func (l *LoopsConfigMarshall) seal(path string) (*LoopsConfig, error) {
	ct := l.CheckTasks
	if ct == nil {
		ct = &LoopConfigMarshall{}
	}
	checkTasks, err := ct.seal(path + ".checkTasks")
	if err != nil {
		return nil, err
	}
	return &LoopsConfig{checkTasks: checkTasks}, nil
}

func (l *LoopConfigMarshall) seal(path string) (*LoopConfig, error) {
	p := l.Policy
	if p == "" {
		p = DefaultPolicy
	}
	policy, err := recurring.ParsePolicy(p)
	if err != nil {
		return nil, fmt.Errorf("%s.policy: %w", path, err)
	}
	if l.Timeout < 0 {
		return nil, fmt.Errorf("%s.timeout should not be negative: %s", path, l.Timeout)
	}
	return &LoopConfig{policy: policy, timeout: l.Timeout}, nil
}

// load server config from a file.
func Load(filepath string) (*ServerConfig, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}
	return Unmarshal(content)
}

func Unmarshal(conf []byte) (*ServerConfig, error) {
	m := new(ServerConfigMarshall)
	if err := yaml.Unmarshal(conf, m); err != nil {
		return nil, err
	}
	return m.seal("(root)")
}
