// Package flowengine is an in-process process engine. It runs the order
// process definitions derived from the category routes: automated steps
// become jobs executed by work handlers, approval steps become human tasks.
//
// State lives in a Store. The PostgreSQL store lets several service replicas
// share the work; jobs are claimed with FOR UPDATE SKIP LOCKED.
package flowengine

import (
	"orderflow/internal/core/domain/services"
)

// DecisionVariable is the boolean a completed approval task must carry.
// false routes the instance to the task's reject step.
const DecisionVariable = "approved"

// StepDef is one step of a definition. Task is set for human steps.
type StepDef struct {
	Name string
	Task *TaskDef
}

type TaskDef struct {
	Name           string
	CandidateGroup string
	// RejectStep runs when the task is completed with DecisionVariable=false.
	// Empty means a rejection simply continues with the next step.
	RejectStep string
}

type Definition struct {
	Key      string
	Category string
	Steps    []StepDef
}

func (d Definition) stepIndex(name string) int {
	for i, s := range d.Steps {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// DefinitionsFromRoutes builds one definition per route. The approval step
// becomes a task for the route's approval team that rejects into StepReject.
func DefinitionsFromRoutes(routes []services.Route) []Definition {
	defs := make([]Definition, 0, len(routes))
	for _, r := range routes {
		def := Definition{Key: r.ProcessKey, Category: string(r.Category)}
		for _, step := range r.Steps {
			sd := StepDef{Name: string(step)}
			if step == services.StepApproval {
				sd.Task = &TaskDef{
					Name:           r.ApprovalTask,
					CandidateGroup: r.ApprovalTeam,
					RejectStep:     string(services.StepReject),
				}
			}
			def.Steps = append(def.Steps, sd)
		}
		defs = append(defs, def)
	}
	return defs
}
