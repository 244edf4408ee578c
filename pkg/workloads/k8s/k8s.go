package k8s

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	kubebatch "k8s.io/api/batch/v1"
	kubecore "k8s.io/api/core/v1"
	kubeerr "k8s.io/apimachinery/pkg/api/errors"
	kubeapimeta "k8s.io/apimachinery/pkg/apis/meta/v1"
	kubelabels "k8s.io/apimachinery/pkg/labels"
	k8s "k8s.io/client-go/kubernetes"
)

// the job (or something required) is not found in the cluster.
var ErrMissing = errors.New("missing in cluster")

// subset of k8s.Clientset
type K8sClient interface {
	GetJob(ctx context.Context, namespace string, name string) (*kubebatch.Job, error)
	DeleteJob(ctx context.Context, namespace string, name string) error

	FindPods(ctx context.Context, namespace string, selector kubelabels.Selector) ([]kubecore.Pod, error)

	// Log returns log stream of a container. The stream ends when the current log is read.
	Log(ctx context.Context, namespace string, podname string, container string) (io.ReadCloser, error)
}

// A wrapper for the type k8s.Interface; because it does not prefer method chain-style invocations of that type.
type k8sClient struct {
	client k8s.Interface
}

// type check: k8sClient implements K8sClient
var _ K8sClient = &k8sClient{}

func (k *k8sClient) GetJob(ctx context.Context, namespace string, name string) (*kubebatch.Job, error) {
	return k.client.BatchV1().Jobs(namespace).Get(ctx, name, kubeapimeta.GetOptions{})
}

func (k *k8sClient) DeleteJob(ctx context.Context, namespace string, name string) error {
	foreground := kubeapimeta.DeletePropagationForeground
	zero := int64(0)
	return k.client.BatchV1().Jobs(namespace).Delete(ctx, name, kubeapimeta.DeleteOptions{
		GracePeriodSeconds: &zero,
		PropagationPolicy:  &foreground,
	})
}

func (k *k8sClient) FindPods(ctx context.Context, namespace string, selector kubelabels.Selector) ([]kubecore.Pod, error) {
	resp, err := k.client.CoreV1().Pods(namespace).List(ctx, kubeapimeta.ListOptions{
		LabelSelector: selector.String(),
	})
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (k *k8sClient) Log(ctx context.Context, namespace string, podname string, container string) (io.ReadCloser, error) {
	return k.client.
		CoreV1().
		Pods(namespace).
		GetLogs(podname, &kubecore.PodLogOptions{Container: container}).
		Stream(ctx)
}

// WrapK8sClient wraps *k8s.Clientset (or its fake) as K8sClient.
func WrapK8sClient(c k8s.Interface) K8sClient {
	return &k8sClient{client: c}
}

type JobStatus string

const (
	// no pods have been started.
	Pending JobStatus = "Pending"

	// at least one pod has started, and the job has not completed.
	Running JobStatus = "Running"

	// the job is succeeded.
	Succeeded JobStatus = "Succeeded"

	// the job is failed.
	Failed JobStatus = "Failed"
)

// Done is true when the job will not progress anymore.
func (s JobStatus) Done() bool {
	return s == Succeeded || s == Failed
}

// abstraction of k8s job.
type Job interface {
	// the name of the job
	Name() string

	// the namespace where the job is placed in
	Namespace() string

	// how does the job progress, at least
	//
	// This value is just a SNAPSHOT of the job when you get the instance.
	// To refresh, get a new instance of `Job` with `Cluster.GetJob`.
	Status() JobStatus

	// Log reads logs of all containers in pods of the job, line by line.
	//
	// Lines are ordered by pod name, and then by container order in the pod.
	Log(ctx context.Context) ([]string, error)
}

type job struct {
	job    *kubebatch.Job
	pods   []kubecore.Pod
	client K8sClient
}

var _ Job = &job{}

func (j *job) Name() string {
	return j.job.Name
}

func (j *job) Namespace() string {
	return j.job.Namespace
}

func (j *job) Status() JobStatus {
	for _, sc := range j.job.Status.Conditions {
		if sc.Status != kubecore.ConditionTrue {
			continue
		}
		switch sc.Type {
		case kubebatch.JobComplete:
			return Succeeded
		case kubebatch.JobFailed:
			return Failed
		}
	}

	for _, p := range j.pods {
		// if at least one pod has been run, the job has been run.
		switch p.Status.Phase {
		case kubecore.PodRunning, kubecore.PodSucceeded, kubecore.PodFailed:
			return Running
		}
	}

	return Pending
}

func (j *job) Log(ctx context.Context) ([]string, error) {
	pods := slices.Clone(j.pods)
	slices.SortFunc(pods, func(a, b kubecore.Pod) int { return strings.Compare(a.Name, b.Name) })

	lines := []string{}
	for _, pod := range pods {
		for _, c := range pod.Spec.Containers {
			ls, err := readLines(ctx, j.client, pod.Namespace, pod.Name, c.Name)
			if err != nil {
				return nil, fmt.Errorf("%s/%s: %w", pod.Name, c.Name, err)
			}
			lines = append(lines, ls...)
		}
	}
	return lines, nil
}

func readLines(ctx context.Context, client K8sClient, namespace, pod, container string) ([]string, error) {
	stream, err := client.Log(ctx, namespace, pod, container)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	lines := []string{}
	scanner := bufio.NewScanner(stream)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// Cluster is a view of a namespace in the k8s cluster.
type Cluster interface {
	Namespace() string

	// GetJob gets a snapshot of the job.
	//
	// # Returns
	//
	// - error: ErrMissing if the job is not found.
	GetJob(ctx context.Context, name string) (Job, error)

	// DeleteJob deletes the job and its pods.
	//
	// # Returns
	//
	// - error: ErrMissing if the job is not found.
	DeleteJob(ctx context.Context, name string) error
}

type k8sCluster struct {
	client    K8sClient
	namespace string
}

func AttachCluster(client K8sClient, namespace string) Cluster {
	return &k8sCluster{client: client, namespace: namespace}
}

func (c *k8sCluster) Namespace() string {
	return c.namespace
}

func (c *k8sCluster) GetJob(ctx context.Context, name string) (Job, error) {
	_job, err := c.client.GetJob(ctx, c.namespace, name)
	if err != nil {
		if kubeerr.IsNotFound(err) {
			return nil, fmt.Errorf("%w: job %s", ErrMissing, name)
		}
		return nil, err
	}

	var selector kubelabels.Selector
	if s := _job.Spec.Selector; s != nil && len(s.MatchLabels) != 0 {
		selector = kubelabels.SelectorFromSet(s.MatchLabels)
	} else {
		selector = kubelabels.SelectorFromSet(kubelabels.Set{"job-name": name})
	}

	pods, err := c.client.FindPods(ctx, c.namespace, selector)
	if err != nil {
		return nil, err
	}
	return &job{job: _job, pods: pods, client: c.client}, nil
}

func (c *k8sCluster) DeleteJob(ctx context.Context, name string) error {
	if err := c.client.DeleteJob(ctx, c.namespace, name); err != nil {
		if kubeerr.IsNotFound(err) {
			return fmt.Errorf("%w: job %s", ErrMissing, name)
		}
		return err
	}
	return nil
}
