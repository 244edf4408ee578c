package server

import (
	"time"

	"github.com/intelcomp/taskwatch/pkg/loop/recurring"
)

// ServerConfig is a verified, readonly configuration of taskd and taskloops.
//
// To get ServerConfig, use Load or Unmarshal.
type ServerConfig struct {
	port     int32
	database string
	auth     *AuthConfig
	cluster  *ClusterConfig
	loops    *LoopsConfig
}

func (c *ServerConfig) Port() int32 {
	return c.port
}

// Connection string for database.
func (c *ServerConfig) Database() string {
	return c.database
}

func (c *ServerConfig) Auth() *AuthConfig {
	return c.auth
}

// Cluster returns nil when no kubernetes cluster runs the tasks.
func (c *ServerConfig) Cluster() *ClusterConfig {
	return c.cluster
}

func (c *ServerConfig) Loops() *LoopsConfig {
	return c.loops
}

type AuthConfig struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// HMAC key to sign tokens.
func (a *AuthConfig) Secret() []byte {
	return a.secret
}

func (a *AuthConfig) Issuer() string {
	return a.issuer
}

// lifetime of issued tokens.
func (a *AuthConfig) TTL() time.Duration {
	return a.ttl
}

type ClusterConfig struct {
	namespace  string
	kubeconfig string
	jobPrefix  string
}

// k8s namespace where jobs of tasks are running.
func (c *ClusterConfig) Namespace() string {
	return c.namespace
}

// path to kubeconfig. Empty means in-cluster configuration.
func (c *ClusterConfig) Kubeconfig() string {
	return c.kubeconfig
}

// name of the job for a task is JobPrefix() + task id.
func (c *ClusterConfig) JobPrefix() string {
	return c.jobPrefix
}

type LoopsConfig struct {
	checkTasks *LoopConfig
}

func (l *LoopsConfig) CheckTasks() *LoopConfig {
	return l.checkTasks
}

type LoopConfig struct {
	policy  recurring.Policy
	timeout time.Duration
}

func (l *LoopConfig) Policy() recurring.Policy {
	return l.policy
}

// timeout of each cycle. Zero means no timeout.
func (l *LoopConfig) Timeout() time.Duration {
	return l.timeout
}
