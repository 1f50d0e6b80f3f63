// Package behavior is a tick-driven behavior tree engine whose leaves run
// goal routines asynchronously.
//
// Every node implements Behavior. A leaf (Node) is driven through three
// hooks: OnStart on the first tick of an activation, OnUpdate on every tick,
// and OnStop once the activation ends, either naturally (SUCCESS/FAILURE) or
// because a parent invalidated it. Routine-backed leaves start their routine
// on a goroutine in OnStart and cancel and join it in OnStop, so no routine
// outlives the activation that started it.
//
// Composites (Sequence, Selector, Parallel) tick their children in
// declaration order and invalidate any child that is RUNNING but no longer
// reached. Tree serializes Tick and Stop so a node is never ticked
// re-entrantly.
//
// Status values share their numbering with go-behaviortree, and Adapt/FromBT
// convert between the two models so that planner output can be mixed into a
// tree.
package behavior
