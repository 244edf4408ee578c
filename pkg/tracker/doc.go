// Package tracker keeps track of running tasks of the task API.
//
// Scheduler polls the running tasks of each category periodically, and
// Reconciler replaces the Partition of the category with each polled snapshot.
// When a task is found finished for the first time, a Completion is published
// through Channel.
//
//	client := rest.NewClient(profile)
//	channel := tracker.NewChannel()
//	reconciler := tracker.NewReconciler(client, channel, logger)
//	scheduler := tracker.NewScheduler(client, reconciler, logger)
//
//	channel.Subscribe(func(c tracker.Completion) { ... })
//	scheduler.Start(ctx)
//	defer scheduler.Stop()
package tracker
