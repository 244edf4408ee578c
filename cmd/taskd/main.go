package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path"
	"time"

	"github.com/intelcomp/taskwatch/cmd/taskd/handlers"
	"github.com/intelcomp/taskwatch/pkg/auth"
	"github.com/intelcomp/taskwatch/pkg/checktasks"
	"github.com/intelcomp/taskwatch/pkg/configs/server"
	kpg "github.com/intelcomp/taskwatch/pkg/db/postgres"
	"github.com/intelcomp/taskwatch/pkg/utils/echoutil"
	"github.com/intelcomp/taskwatch/pkg/utils/filewatch"
	"github.com/intelcomp/taskwatch/pkg/utils/kubeutil"
	"github.com/intelcomp/taskwatch/pkg/utils/try"
	"github.com/intelcomp/taskwatch/pkg/workloads/k8s"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	logger := log.Default()

	configPath := flag.String("config", os.Getenv("TASKWATCH_SERVER_CONFIG"), "path to server config file")
	loglevel := flag.String("loglevel", "info", "log level. debug|info|warn|error|off")
	issueFor := flag.String("issue-token", "", "issue a bearer token for the user, print it and exit")
	flag.Parse()

	conf := try.To(server.Load(*configPath)).OrFatal(logger)
	authority := auth.New(conf.Auth().Secret(), conf.Auth().Issuer(), conf.Auth().TTL())

	if *issueFor != "" {
		fmt.Println(try.To(authority.Issue(*issueFor)).OrFatal(logger))
		return
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())

	// set log
	echoutil.SetLevel(e, *loglevel)
	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		e.DefaultHTTPErrorHandler(err, ctx)
		e.Logger.Error(err)
	}
	e.Use(echoutil.LogHandlerFunc)

	ctx, cancel, err := filewatch.UntilModifyContext(context.Background(), *configPath)
	if err != nil {
		logger.Fatalf("can not watch configration: %s", err)
	}
	defer cancel()
	context.AfterFunc(ctx, func() {
		logger.Printf("stopping server: %s", context.Cause(ctx))
		graceful, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := e.Shutdown(graceful); err != nil {
			logger.Printf("error on shutdown: %s", err)
		}
	})

	db := try.To(kpg.New(ctx, conf.Database(), kpg.WithSchemaUpgrade())).OrFatal(logger)
	defer db.Close()

	var cluster k8s.Cluster
	jobName := func(id string) string { return id }
	if cc := conf.Cluster(); cc != nil {
		clientset := try.To(kubeutil.ConnectToK8s(cc.Kubeconfig())).OrFatal(logger)
		cluster = k8s.AttachCluster(k8s.WrapK8sClient(clientset), cc.Namespace())
		prefix := cc.JobPrefix()
		jobName = func(id string) string { return checktasks.JobName(prefix, id) }
	} else {
		logger.Println("no cluster is configured. canceling tasks does not stop their jobs.")
	}

	api := func(p ...string) string { return path.Join(append([]string{"/api"}, p...)...) }
	tasks := db.Tasks()

	g := e.Group("", authority.Middleware())
	{
		taskId := "taskId"
		g.GET(api("tasks/running"), handlers.RunningHandler(tasks))
		g.GET(api("tasks/clear-all"), handlers.ClearAllHandler(tasks))
		g.POST(api("tasks"), handlers.SubmitHandler(tasks, time.Now))

		g.GET(api("tasks/:taskId/status"), handlers.StatusHandler(tasks, taskId))
		g.GET(api("tasks/:taskId/clear"), handlers.ClearHandler(tasks, taskId))
		g.GET(api("tasks/:taskId/cancel"), handlers.CancelHandler(tasks, cluster, jobName, taskId))
		g.GET(api("tasks/:taskId/logs"), handlers.LogsHandler(tasks, taskId))
		g.GET(api("tasks/:taskId/documents"), handlers.DocumentsHandler(tasks, taskId))
		g.GET(api("tasks/:taskId/pu-scores/all"), handlers.PUScoresHandler(tasks, taskId))
		g.GET(api("tasks/:taskId/pu-scores/:name"), handlers.PUScoreHandler(tasks, taskId, "name"))
	}
	logger.Println("registred routes:")
	for _, r := range e.Routes() {
		logger.Println(r.Method, r.Path)
	}

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", conf.Port())))
}
