package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/intelcomp/taskwatch/pkg/checktasks"
	"github.com/intelcomp/taskwatch/pkg/configs/server"
	kpg "github.com/intelcomp/taskwatch/pkg/db/postgres"
	"github.com/intelcomp/taskwatch/pkg/loop"
	"github.com/intelcomp/taskwatch/pkg/loop/recurring"
	"github.com/intelcomp/taskwatch/pkg/utils/args"
	"github.com/intelcomp/taskwatch/pkg/utils/filewatch"
	"github.com/intelcomp/taskwatch/pkg/utils/kubeutil"
	"github.com/intelcomp/taskwatch/pkg/utils/logs"
	"github.com/intelcomp/taskwatch/pkg/utils/try"
	"github.com/intelcomp/taskwatch/pkg/workloads/k8s"
)

func main() {
	logger := log.Default()
	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer cancel()

	pconfig := flag.String(
		"config", os.Getenv("TASKWATCH_SERVER_CONFIG"), "path to server config file",
	)
	policy := args.Parser(recurring.ParsePolicy)
	flag.Var(
		policy, "policy",
		`loop policy (syntax: forever[:COOLDOWN]|backlog). overrides the one in config.`+
			` "forever[:COOLDOWN]" = run forever. When backlog is over, wait COOLDOWN as inteval.`+
			` "backlog" = run until backlog is over.`,
	)
	flag.Parse()

	{
		// restart on config update
		wctx, cancel, err := filewatch.UntilModifyContext(ctx, *pconfig)
		if err != nil {
			logger.Fatal(err)
		}
		defer cancel()
		ctx = wctx
	}

	conf := try.To(server.Load(*pconfig)).OrFatal(logger)
	cc := conf.Cluster()
	if cc == nil {
		logger.Fatal("cluster is not configured. nothing to check.")
	}
	lc := conf.Loops().CheckTasks()
	p := lc.Policy()
	if policy.IsSet() {
		p = policy.Value()
	}

	db := try.To(kpg.New(ctx, conf.Database())).OrFatal(logger)
	defer db.Close()

	clientset := try.To(kubeutil.ConnectToK8s(cc.Kubeconfig())).OrFatal(logger)
	cluster := k8s.AttachCluster(k8s.WrapK8sClient(clientset), cc.Namespace())

	logger.Printf(`start loop "check-tasks" /w policy "%s"`, p)

	_, err := loop.Start(
		ctx, checktasks.Seed(),
		loop.Monitor(
			logs.ByLogger(logger, logs.Copied(), logs.WithPrefix("[check-tasks loop] ")),
			checktasks.Task(logger, db.Tasks(), cluster, cc.JobPrefix()).Applied(p),
		),
		loop.WithTimeout(lc.Timeout()),
	)

	if err == nil {
		return
	} else if errors.Is(err, context.Canceled) {
		logger.Fatal(err, " (loop context is cancelled by: ", context.Cause(ctx), ")")
	}
	logger.Fatal(err)
}
