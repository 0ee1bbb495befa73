// Package coordination implements the control-plane protocol between the
// controller and its workers: worker registration, heartbeats, and dataflow
// domain assignment. Messages are a flat, versioned envelope carrying the
// sender's address, the cluster epoch, and one payload variant. The
// protocol is a plain data-interchange layer, orthogonal to query
// compilation.
package coordination

// Epoch identifies one generation of controller leadership. Workers discard
// messages from stale epochs.
type Epoch uint64

// EnvelopeVersion is the current version of the message envelope. Decoding
// rejects any other version.
const EnvelopeVersion = 1

// PayloadType discriminates the payload variants of a [Message].
type PayloadType string

// Recognized values of [PayloadType].
const (
	// PayloadRegister registers a new worker with the controller.
	PayloadRegister PayloadType = "register"
	// PayloadDeregister announces a worker going offline.
	PayloadDeregister PayloadType = "deregister"
	// PayloadHeartbeat announces that a worker is still alive.
	PayloadHeartbeat PayloadType = "heartbeat"
	// PayloadAssignDomain assigns a new dataflow domain for a worker to run.
	PayloadAssignDomain PayloadType = "assign_domain"
	// PayloadRemoveDomain removes a running domain from a worker.
	PayloadRemoveDomain PayloadType = "remove_domain"
	// PayloadDomainBooted gossips that a domain came online.
	PayloadDomainBooted PayloadType = "domain_booted"
)

// Message is the coordination-layer envelope. Every message carries the
// address it was sent from and the epoch it is associated with.
type Message struct {
	Version int     `json:"version"`
	Source  string  `json:"source"`
	Epoch   Epoch   `json:"epoch"`
	Payload Payload `json:"payload"`
}

// Payload holds exactly one variant, selected by Type. Variants without
// fields (deregister, heartbeat, remove_domain) carry no body.
type Payload struct {
	Type PayloadType `json:"type"`

	Register     *Register         `json:"register,omitempty"`
	AssignDomain *DomainBuilder    `json:"assign_domain,omitempty"`
	DomainBooted *DomainDescriptor `json:"domain_booted,omitempty"`
}

// Register is the payload a worker sends once on startup.
type Register struct {
	// Addr is the address of the worker.
	Addr string `json:"addr"`
	// ReadListenAddr is the address the worker will be listening on to
	// serve reads.
	ReadListenAddr string `json:"read_listen_addr"`
	// LogFiles lists the log files stored locally on the worker.
	LogFiles []string `json:"log_files,omitempty"`
}

// DomainIndex identifies a dataflow domain within the cluster.
type DomainIndex int

// DomainBuilder describes a domain for a worker to instantiate and run.
type DomainBuilder struct {
	Index DomainIndex `json:"index"`
	Shard int         `json:"shard"`
	// Nodes are the plan node names assigned to the domain.
	Nodes []string `json:"nodes,omitempty"`
}

// DomainDescriptor describes a running domain shard and where to reach it.
type DomainDescriptor struct {
	Index DomainIndex `json:"index"`
	Shard int         `json:"shard"`
	Addr  string      `json:"addr"`
}

// NewRegister creates a register message.
func NewRegister(source string, epoch Epoch, register Register) Message {
	return newMessage(source, epoch, Payload{Type: PayloadRegister, Register: &register})
}

// NewDeregister creates a deregister message.
func NewDeregister(source string, epoch Epoch) Message {
	return newMessage(source, epoch, Payload{Type: PayloadDeregister})
}

// NewHeartbeat creates a heartbeat message.
func NewHeartbeat(source string, epoch Epoch) Message {
	return newMessage(source, epoch, Payload{Type: PayloadHeartbeat})
}

// NewAssignDomain creates a domain assignment message.
func NewAssignDomain(source string, epoch Epoch, domain DomainBuilder) Message {
	return newMessage(source, epoch, Payload{Type: PayloadAssignDomain, AssignDomain: &domain})
}

// NewRemoveDomain creates a domain removal message.
func NewRemoveDomain(source string, epoch Epoch) Message {
	return newMessage(source, epoch, Payload{Type: PayloadRemoveDomain})
}

// NewDomainBooted creates a domain connectivity gossip message.
func NewDomainBooted(source string, epoch Epoch, descriptor DomainDescriptor) Message {
	return newMessage(source, epoch, Payload{Type: PayloadDomainBooted, DomainBooted: &descriptor})
}

func newMessage(source string, epoch Epoch, payload Payload) Message {
	return Message{
		Version: EnvelopeVersion,
		Source:  source,
		Epoch:   epoch,
		Payload: payload,
	}
}
