package coordination

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrBadEnvelope is returned when a message fails envelope validation:
// unsupported version, missing source, or an unknown or inconsistent
// payload variant.
var ErrBadEnvelope = errors.New("bad coordination envelope")

// Encode serializes a message after validating its envelope.
func Encode(msg Message) ([]byte, error) {
	if err := validate(msg); err != nil {
		return nil, err
	}
	return json.Marshal(msg)
}

// Decode deserializes and validates a message.
func Decode(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrBadEnvelope, err)
	}
	if err := validate(msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}

func validate(msg Message) error {
	if msg.Version != EnvelopeVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrBadEnvelope, msg.Version)
	}
	if msg.Source == "" {
		return fmt.Errorf("%w: missing source address", ErrBadEnvelope)
	}
	switch msg.Payload.Type {
	case PayloadRegister:
		if msg.Payload.Register == nil {
			return fmt.Errorf("%w: register payload without body", ErrBadEnvelope)
		}
	case PayloadAssignDomain:
		if msg.Payload.AssignDomain == nil {
			return fmt.Errorf("%w: assign_domain payload without body", ErrBadEnvelope)
		}
	case PayloadDomainBooted:
		if msg.Payload.DomainBooted == nil {
			return fmt.Errorf("%w: domain_booted payload without body", ErrBadEnvelope)
		}
	case PayloadDeregister, PayloadHeartbeat, PayloadRemoveDomain:
		// no body
	default:
		return fmt.Errorf("%w: unknown payload type %q", ErrBadEnvelope, msg.Payload.Type)
	}
	return nil
}
