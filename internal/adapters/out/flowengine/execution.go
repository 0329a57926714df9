package flowengine

import "orderflow/internal/core/ports"

// execution is handed to a work handler. Variables it sets are persisted
// with the transition that follows the handler, on success and on failure.
type execution struct {
	id          string
	instanceID  string
	businessKey string
	vars        ports.Variables
}

func newExecution(jobID string, inst Instance) *execution {
	return &execution{
		id:          jobID,
		instanceID:  inst.ID,
		businessKey: inst.BusinessKey,
		vars:        inst.Variables.Clone(),
	}
}

func (x *execution) ID() string                { return x.id }
func (x *execution) ProcessInstanceID() string { return x.instanceID }
func (x *execution) BusinessKey() string       { return x.businessKey }

func (x *execution) Variable(name string) (any, bool) {
	v, ok := x.vars[name]
	return v, ok
}

func (x *execution) SetVariable(name string, value any) {
	x.vars[name] = value
}
