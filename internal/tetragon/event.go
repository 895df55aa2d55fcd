// Package tetragon reads and decodes trap-related events from the Tetragon
// agent's JSON export logs.
package tetragon

// Event is one exported Tetragon event. Exactly one of the variant fields is
// expected to be set; the JSON decoder leaves all of them nil for event
// kinds the forwarder does not recognize (process_exec, process_exit, ...),
// which makes those events explicitly Unrecognized rather than silently
// half-parsed.
type Event struct {
	// Time is ISO-8601. By the time an Event is decoded, the reader has
	// already stripped the sub-second digits.
	Time string `json:"time"`

	// NodeName is the cluster node the event was observed on.
	NodeName string `json:"node_name"`

	ProcessKprobe     *ProbeEvent `json:"process_kprobe,omitempty"`
	ProcessUprobe     *ProbeEvent `json:"process_uprobe,omitempty"`
	ProcessTracepoint *ProbeEvent `json:"process_tracepoint,omitempty"`
	ProcessLSM        *ProbeEvent `json:"process_lsm,omitempty"`
}

// Probe returns the event's single probe payload, or nil for an
// Unrecognized event.
func (e *Event) Probe() *ProbeEvent {
	switch {
	case e.ProcessKprobe != nil:
		return e.ProcessKprobe
	case e.ProcessUprobe != nil:
		return e.ProcessUprobe
	case e.ProcessTracepoint != nil:
		return e.ProcessTracepoint
	case e.ProcessLSM != nil:
		return e.ProcessLSM
	default:
		return nil
	}
}

// Kind names the event variant, or "unrecognized".
func (e *Event) Kind() string {
	switch {
	case e.ProcessKprobe != nil:
		return "process_kprobe"
	case e.ProcessUprobe != nil:
		return "process_uprobe"
	case e.ProcessTracepoint != nil:
		return "process_tracepoint"
	case e.ProcessLSM != nil:
		return "process_lsm"
	default:
		return "unrecognized"
	}
}

// PolicyName returns the tracing-policy name carried by the event's probe
// payload, or "" for Unrecognized events.
func (e *Event) PolicyName() string {
	if p := e.Probe(); p != nil {
		return p.PolicyName
	}
	return ""
}

// ProbeEvent is the payload shared by all probe-style event kinds. Kprobe
// events additionally carry the traced function name and its arguments.
type ProbeEvent struct {
	PolicyName   string     `json:"policy_name"`
	FunctionName string     `json:"function_name,omitempty"`
	Args         []Argument `json:"args,omitempty"`
	Process      *Process   `json:"process,omitempty"`
}

// FirstFilePath returns the file path of the first argument carrying one,
// or "".
func (p *ProbeEvent) FirstFilePath() string {
	if len(p.Args) == 0 {
		return ""
	}
	if fa := p.Args[0].FileArg; fa != nil {
		return fa.Path
	}
	return ""
}

// Argument is one traced function argument. Only file arguments are
// relevant for trap classification.
type Argument struct {
	FileArg *FileArg `json:"file_arg,omitempty"`
}

// FileArg is the file an access-style kprobe fired on.
type FileArg struct {
	Path string `json:"path"`
}

// Process describes the process that triggered the event.
type Process struct {
	UID       uint32 `json:"uid"`
	PID       uint32 `json:"pid"`
	CWD       string `json:"cwd"`
	Binary    string `json:"binary"`
	Arguments string `json:"arguments"`
	Pod       *Pod   `json:"pod,omitempty"`
}

// Pod is the Kubernetes pod context Tetragon attaches to a process.
type Pod struct {
	Name      string     `json:"name"`
	Namespace string     `json:"namespace"`
	Container *Container `json:"container,omitempty"`
}

// Container identifies the container within the pod.
type Container struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
