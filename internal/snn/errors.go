package snn

import "errors"

var (
	// ErrSpikeSchedule indicates an invalid SetSpikes call.
	ErrSpikeSchedule = errors.New("snn: invalid spike schedule")

	// ErrDuplicateSpike indicates two spikes of one neuron in the same timestep.
	ErrDuplicateSpike = errors.New("snn: neuron spikes twice in one timestep")

	// ErrUnknownObject is returned by Network.Add for unsupported values.
	ErrUnknownObject = errors.New("snn: unsupported network object")

	// ErrNotInNetwork indicates a synapse or monitor whose endpoints were never added.
	ErrNotInNetwork = errors.New("snn: object references a group outside the network")

	// ErrInvalidInterval indicates an operation interval that is not a positive multiple of dt.
	ErrInvalidInterval = errors.New("snn: operation interval must be a positive multiple of dt")

	// ErrIndexOutOfRange indicates a neuron or synapse index outside its object.
	ErrIndexOutOfRange = errors.New("snn: index out of range")
)
