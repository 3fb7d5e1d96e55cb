package mvu

// Spawner arranges for one unit of asynchronous work to execute on some
// external scheduler. Spawn must not block the caller; it only schedules.
//
// A Spawner may refuse work (scheduler shut down, saturated) by returning
// an error. The runtime reports the refusal through its error hook and
// keeps processing; that task's opportunity to emit is simply lost.
type Spawner interface {
	Spawn(task func()) error
}

// SpawnerFunc adapts a plain function to the Spawner interface.
type SpawnerFunc func(task func()) error

func (f SpawnerFunc) Spawn(task func()) error {
	return f(task)
}

// GoSpawner schedules each task on its own goroutine. This is the
// production spawner for hosts with a Go scheduler; embedded or
// single-threaded hosts substitute their own.
type GoSpawner struct{}

func (GoSpawner) Spawn(task func()) error {
	go task()
	return nil
}
