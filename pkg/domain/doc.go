package domain

// domain package contains the Domain Models of the running-task tracker.
//
// `domain/ENTITY.go` has high-level entities (Domain Model types) and functions.
// For example, `domain/task.go` contains the `Task` entity.
//
// # Entities
//
// - `task`: a unit of asynchronous work tracked by the model-trainer backend,
// such as training a topic model or fusing topics of a model.
// A task is submitted elsewhere; this module only observes it until it is finished and cleared.
//
// - `category`: the logical group of a task, "training" or "curating".
// Each category is polled on its own cadence and has its own state.
// Which category a task belongs to is decided by its `SubType` (see `Classify`).
//
// - `status`: coarse status of a single task, as reported by the per-task status endpoint.
