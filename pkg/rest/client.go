package rest

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	apitasks "github.com/intelcomp/taskwatch/pkg/api/types/tasks"
	"github.com/intelcomp/taskwatch/pkg/configs/client"
	"github.com/intelcomp/taskwatch/pkg/domain"
	"github.com/intelcomp/taskwatch/pkg/utils/logs"
)

// TaskClient talks to the task API.
type TaskClient interface {
	// Running lists tasks of the category, both of unfinished and finished-but-not-cleared.
	//
	// Items which cannot be read as a task are logged and skipped.
	Running(ctx context.Context, category domain.Category) ([]domain.Task, error)

	// Status tells the coarse status of the task.
	//
	// The server answers domain.Error for unknown tasks.
	Status(ctx context.Context, taskId string) (domain.Status, error)

	// Clear acknowledges a finished task. It is idempotent.
	Clear(ctx context.Context, taskId string) error

	// ClearAll acknowledges all finished tasks of the category.
	ClearAll(ctx context.Context, category domain.Category) error

	// Cancel stops the task and forgets it.
	Cancel(ctx context.Context, taskId string) error

	// Logs returns log lines of the task.
	Logs(ctx context.Context, taskId string) ([]string, error)

	// Documents returns documents sampled by the task.
	Documents(ctx context.Context, taskId string) ([]json.RawMessage, error)

	// PUScores lists names of PU score images produced by the task.
	PUScores(ctx context.Context, taskId string) ([]string, error)

	// PUScore returns the PNG image of the PU score.
	PUScore(ctx context.Context, taskId string, name string) ([]byte, error)

	// Submit starts a new task.
	Submit(ctx context.Context, submission apitasks.Submission) (domain.Task, error)
}

type taskClient struct {
	httpclient *http.Client
	api        string
	logger     *log.Logger
}

// create new client for Profile
//
// # Args
//
// - *client.Profile
//
// # Return
//
// - TaskClient: created client
//
// - error: If given profile is invalid, client.ErrProfileInvalid is returned.
func NewClient(prof *client.Profile) (TaskClient, error) {
	return NewClientWithLogger(prof, log.Default())
}

// NewClientWithLogger is NewClient, but tasks skipped from snapshots are reported to logger.
//
// nil logger discards them.
func NewClientWithLogger(prof *client.Profile, logger *log.Logger) (TaskClient, error) {
	if err := prof.Verify(); err != nil {
		return nil, err
	}
	httpclient := new(http.Client)

	if prof.Cert.CA != "" {
		hc, err := trustCa(httpclient, []string{prof.Cert.CA})
		if err != nil {
			return nil, err
		}
		httpclient = hc
	}

	if prof.Token != "" {
		base := httpclient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		httpclient.Transport = &bearer{base: base, token: prof.Token}
	}

	return &taskClient{
		httpclient: httpclient,
		api:        strings.TrimSuffix(prof.ApiRoot, "/"),
		logger:     logs.ByLogger(logger, logs.Copied(), logs.WithPrefix("[taskclient] ")),
	}, nil
}

// build URL with path
func (c *taskClient) apipath(path ...string) string {
	elems := []string{c.api}
	for _, p := range path {
		elems = append(elems, strings.Trim(p, "/"))
	}
	return strings.Join(elems, "/")
}

type bearer struct {
	base  http.RoundTripper
	token string
}

func (b *bearer) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+b.token)
	return b.base.RoundTrip(req)
}

func trustCa(hc *http.Client, cacerts []string) (*http.Client, error) {
	if len(cacerts) <= 0 {
		return hc, nil
	}

	if hc.Transport == nil {
		hc.Transport = http.DefaultTransport
	}

	tran, ok := hc.Transport.(*http.Transport)
	if !ok {
		return nil, fmt.Errorf("failed to add ca cert")
	}
	tran = tran.Clone()

	tcc := tran.TLSClientConfig.Clone()
	if tcc == nil {
		tcc = &tls.Config{}
	}

	rootcas := tcc.RootCAs
	if rootcas == nil {
		rootcas = x509.NewCertPool()
		tcc.RootCAs = rootcas
	}
	for _, ca := range cacerts {
		bin, err := base64.StdEncoding.DecodeString(ca)
		if err != nil {
			return nil, err
		}

		if !rootcas.AppendCertsFromPEM(bin) {
			return nil, fmt.Errorf("failed to add cert")
		}
	}

	tran.TLSClientConfig = tcc
	hc.Transport = tran
	return hc, nil
}
